package server

// indexHTML is the static preview shell. It loads the manifest, stacks
// the page images, and reconnects on websocket reload pushes.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Tide Preview</title>
<style>
  body { margin: 0; background: #3c3c3c; font-family: sans-serif; }
  main { display: flex; flex-direction: column; align-items: center; padding: 15px 0; }
  .page { background: #fff; box-shadow: 0 2px 8px rgba(0,0,0,.4); margin-bottom: 15px; }
  .page img { display: block; max-width: 90vw; }
  .placeholder { display: flex; align-items: center; justify-content: center; color: #888; }
</style>
</head>
<body>
<main id="pages"></main>
<script>
async function refresh() {
  const res = await fetch('/pages');
  const pages = await res.json();
  const main = document.getElementById('pages');
  main.replaceChildren();
  for (const page of pages) {
    const div = document.createElement('div');
    div.className = 'page';
    if (page.rendered) {
      const img = document.createElement('img');
      img.src = '/page/' + page.number + '.png?t=' + Date.now();
      div.appendChild(img);
    } else {
      div.classList.add('placeholder');
      div.style.width = page.width_pt + 'px';
      div.style.height = page.height_pt + 'px';
      div.textContent = 'rendering…';
    }
    main.appendChild(div);
  }
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');
  ws.onmessage = (ev) => { if (ev.data === 'reload') refresh(); };
  ws.onclose = () => setTimeout(connect, 1000);
}

refresh();
connect();
</script>
</body>
</html>
`
