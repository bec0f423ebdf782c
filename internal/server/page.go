package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/vango-dev/atom/pkg/form"
	"github.com/vango-dev/atom/pkg/view"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
.container { border: 1px solid #ccc; padding: .5rem; margin: .5rem 0; }
.container .container { display: inline-block; vertical-align: top; width: 45%; }
.field, .value { display: inline-block; margin: 2px 8px 2px 0; }
input { width: 8rem; }
</style>
</head>
<body>
<div id="app">{{.Body}}</div>
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + {{.WSPath}});
  var app = document.getElementById("app");

  app.addEventListener("input", function (e) {
    var target = e.target.getAttribute("data-target");
    if (!target || ws.readyState !== WebSocket.OPEN) return;
    ws.send(JSON.stringify({type: "input", target: target, value: e.target.value}));
  });

  function replace(id, html) {
    var el = document.getElementById(id);
    if (!el) return;
    // Keep the caret in the field being typed into.
    var active = document.activeElement;
    if (active && el.classList.contains("field") && el.contains(active)) return;
    var tmp = document.createElement("div");
    tmp.innerHTML = html;
    el.replaceWith(tmp.firstElementChild);
  }

  ws.onmessage = function (msg) {
    var f = JSON.parse(msg.data);
    if (f.type === "init") {
      app.innerHTML = f.html;
    } else if (f.type === "patch") {
      f.patches.forEach(function (p) { replace(p.id, p.html); });
    } else if (f.type === "error") {
      console.warn(f.error.code + ": " + f.error.message);
    }
  };
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title  string
	Body   template.HTML
	WSPath string
}

// renderStatic renders the form once without keeping any subscription.
func (s *Server) renderStatic() string {
	root := view.NewRoot()
	v := form.Mount(root, s.fields)
	defer v.Close()
	return v.HTML()
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title: "atomdemo",
		// Field values are escaped by the form components.
		Body:   template.HTML(s.renderStatic()),
		WSPath: "/ws",
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
