package web

import (
	"bytes"
	"html/template"
	"net/http"
	"time"
)

type templates struct {
	page  *template.Template
	game  *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>` + styles + `</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the game template within the same set so the page can include it
	template.Must(base.New("game").Parse(gameTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
{{if .}}<p><a href="/session/{{.}}">Resume game</a></p>{{end}}
<form action="/session" method="post"><button>New game</button></form>`))
	page := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/session/{{.ID}}/events">
  <div hx-sse="swap:game">{{template "game" .}}</div>
</div>`))
	// Standalone game template used for fragment rendering
	game := template.Must(template.New("game_only").Parse(gameTemplate))
	return &templates{page: page, game: game, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const styles = `
.game{display:flex;gap:2em;font-family:sans-serif}
.board-row{display:flex}
.square{width:3em;height:3em;font-size:1.5em;margin:-1px 0 0 -1px}
.game-info-row{display:flex;gap:2em}
.alert{color:#b00}
`

const gameTemplate = `
<div id="game" class="game">
  <div class="game-board">
    {{range .Rows}}
    <div class="board-row">
      {{range .}}
      <form hx-post="/session/{{$.ID}}/play" hx-target="#game" hx-swap="outerHTML" method="post" action="/session/{{$.ID}}/play">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button class="square" type="submit"{{if $.Over}} disabled{{end}}>{{if .Winning}}<i>{{.Mark}}</i>{{else}}{{.Mark}}{{end}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
  </div>
  <div class="game-info">
    {{if .Error}}
    <div class="alert">{{.Error}}</div>
    {{end}}
    <div class="game-info-row">
      <div class="status">{{.Status}}</div>
      <form hx-post="/session/{{.ID}}/order" hx-target="#game" hx-swap="outerHTML" method="post" action="/session/{{.ID}}/order">
        <button type="submit">{{.OrderLabel}}</button>
      </form>
      <form hx-post="/session/{{.ID}}/restart" hx-target="#game" hx-swap="outerHTML" method="post" action="/session/{{.ID}}/restart">
        <button type="submit">Restart</button>
      </form>
    </div>
    <div class="game-info-row">
      <ol class="nav">
        {{range .Nav}}
        <li>
          <form hx-post="/session/{{$.ID}}/jump" hx-target="#game" hx-swap="outerHTML" method="post" action="/session/{{$.ID}}/jump">
            <input type="hidden" name="step" value="{{.Step}}">
            <button type="submit">{{.Label}}</button>
          </form>
        </li>
        {{end}}
      </ol>
      <ol class="positions">
        {{range .Positions}}
        <li>{{if .Current}}<b>{{.Label}}</b>{{else}}{{.Label}}{{end}}</li>
        {{end}}
      </ol>
    </div>
  </div>
</div>
`

const sessionCookie = "session_id"

// sessionFromCookie returns the session id remembered by the browser, if any.
func sessionFromCookie(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// rememberSession stores the session id so the index page can offer to resume.
func rememberSession(w http.ResponseWriter, id string, ttl time.Duration) {
	c := &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}
