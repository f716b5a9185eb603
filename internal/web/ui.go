package web

// uiHTML is the page shell. Everything inside coherence_header and
// coherence_body is created by the server over /ws.
const uiHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Coherence</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: Verdana, Arial, sans-serif; background: #202020; color: #e0e0e0; }
  #coherence_header {
    display: flex;
    align-items: center;
    gap: 24px;
    padding: 8px 16px;
    background: #303030;
    border-bottom: 1px solid #606060;
  }
  .coherence_title { font-size: 20px; font-weight: 700; color: #fff; }
  .coherence_menu_box { display: flex; gap: 4px; }
  .coherence_menu_item {
    color: #FFFFFF;
    background-color: #404040;
    padding: 4px 12px;
    border-radius: 4px 4px 0 0;
    cursor: pointer;
    user-select: none;
  }
  .coherence_error {
    background: #4a1c1c;
    color: #ff9090;
    padding: 4px 8px;
    border-radius: 4px;
    font-size: 12px;
  }
  .coherence_logout { margin-left: auto; color: #c0c0c0; font-size: 12px; }
  #coherence_body { position: relative; padding: 16px; }
  .coherence_container { position: absolute; top: 16px; left: 16px; right: 16px; visibility: hidden; }
  .coherence_device { padding: 6px 8px; border-bottom: 1px solid #404040; }
  [class^="coherence_log_"] { font-family: monospace; font-size: 12px; white-space: pre; }
  .coherence_log_warn { color: #fb923c; }
  .coherence_log_error { color: #f87171; }
  .coherence_log_debug { color: #909090; }
</style>
</head>
<body>
<div id="coherence_header"><div class="coherence_title">Coherence</div><a class="coherence_logout" href="/logout">Sign out</a></div>
<div id="coherence_body"></div>
<div class="coherence_footer" style="display:none">{{APP_VERSION}}</div>
<script>
(function() {
  var ws = null;
  var wsReconnectDelay = 1000;
  var ops = {
    append: function(op) {
      var parent = document.getElementById(op.parent);
      if (!parent || document.getElementById(op.id)) return;
      var el = document.createElement('div');
      el.id = op.id;
      if (op.class) el.className = op.class;
      el.textContent = op.text || '';
      parent.appendChild(el);
    },
    remove: function(op) {
      var el = document.getElementById(op.id);
      if (el && el.parentNode) el.parentNode.removeChild(el);
    },
    style: function(op) {
      var el = document.getElementById(op.id);
      if (el) el.style.setProperty(op.prop, op.value);
    },
    listen: function(op) {
      var el = document.getElementById(op.id);
      if (!el) return;
      el.addEventListener(op.event, function(evt) {
        if (ws && ws.readyState === WebSocket.OPEN) {
          ws.send(JSON.stringify({type: evt.type, id: evt.target.id, class: evt.target.className}));
        }
      }, false);
    }
  };

  function reset() {
    var header = document.getElementById('coherence_header');
    Array.prototype.slice.call(header.children).forEach(function(el) {
      if (el.className !== 'coherence_title' && el.className !== 'coherence_logout') header.removeChild(el);
    });
    document.getElementById('coherence_body').innerHTML = '';
  }

  function connectWebSocket() {
    var protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
    ws = new WebSocket(protocol + '//' + window.location.host + '/ws');
    ws.onopen = function() {
      wsReconnectDelay = 1000;
      reset();
    };
    ws.onmessage = function(event) {
      try {
        var op = JSON.parse(event.data);
        if (ops[op.op]) ops[op.op](op);
      } catch (e) {
        console.error('Failed to apply op:', e);
      }
    };
    ws.onclose = function() {
      ws = null;
      setTimeout(connectWebSocket, wsReconnectDelay);
      wsReconnectDelay = Math.min(wsReconnectDelay * 2, 10000);
    };
  }

  connectWebSocket();
})();
</script>
</body>
</html>`
