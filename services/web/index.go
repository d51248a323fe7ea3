// services/web/index.go
package web

// The device serves a single self-contained page: live viewfinder, capture
// and flash buttons, and the diagnostic terminal over SSE. Kept inline so
// the binary has no filesystem dependency for its UI.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>camdevice</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 1em; }
img { max-width: 100%; border: 1px solid #444; }
button { margin: 2px; padding: 6px 12px; }
#log { background: #000; color: #0f0; padding: 8px; height: 16em;
       overflow-y: scroll; white-space: pre; font-size: 12px; }
</style>
</head>
<body>
<h3>camdevice</h3>
<img id="view" src="/stream" alt="stream">
<div>
<button onclick="fetch('/capture?save=1')">capture</button>
<button onclick="fetch('/flash?on=1')">flash on</button>
<button onclick="fetch('/flash?on=0')">flash off</button>
<button onclick="fetch('/log/clear')">clear log</button>
<a href="/sd/list">files</a>
<a href="/status">status</a>
</div>
<div id="log"></div>
<script>
var log = document.getElementById('log');
var es = new EventSource('/events');
es.onmessage = function (e) {
  log.textContent += e.data + '\n';
  log.scrollTop = log.scrollHeight;
};
</script>
</body>
</html>
`
