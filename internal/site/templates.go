package site

import (
	"html/template"
	"time"
)

var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"formatTime": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	// Resource bodies are authored by signed-in admins.
	"trustedHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
}

// pageTemplates holds every view; "page" is the entry point.
const pageTemplates = `
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <meta name="description" content="{{.MetaDescription}}">
  <link rel="canonical" href="{{.CanonicalURL}}">
  <link rel="stylesheet" href="/static/style.css">
</head>
<body>
  <header class="top-bar">
    <a class="brand" href="{{.HomeHref}}">{{.Info.AppName}}</a>
    <form class="search" action="/search" method="get" role="search">
      <input type="hidden" name="from" value="{{.State.ActiveSection}}">
      {{if eq .State.ActiveSection "search"}}<input type="hidden" name="from_q" value="{{.State.SearchQuery}}">{{end}}
      <input type="search" name="q" placeholder="Search resources..." value="{{if eq .State.ActiveSection "search"}}{{.State.SearchQuery}}{{end}}" autocomplete="off">
    </form>
  </header>
  <div class="layout">
    <nav class="sidebar" id="menu">{{template "menu" .Menu}}</nav>
    <main class="content">
      {{if .Flash}}<div class="flash">{{.Flash}}</div>{{end}}
      {{if .Error}}<div class="error-banner">{{.Error}}</div>{{end}}
      {{if eq .View "home"}}{{template "home" .}}
      {{else if eq .View "request"}}{{template "request" .}}
      {{else if eq .View "admin"}}{{template "admin" .}}
      {{else if eq .View "resource"}}{{template "resource" .}}
      {{else}}{{template "section" .}}{{end}}
    </main>
  </div>
  <footer class="footer">
    <p>{{.Info.AppName}} &middot; {{.Info.Tagline}}</p>
    <p>{{.Info.TeacherName}} &middot; {{.Info.Phone}} &middot; <a href="mailto:{{.Info.Email}}">{{.Info.Email}}</a></p>
  </footer>
  <script src="/static/live.js"></script>
</body>
</html>{{end}}

{{define "menu"}}<ul>{{range .}}{{if .Children}}
  <li class="group{{if .Expanded}} expanded{{end}}"><span class="group-label">{{.Label}}</span>{{template "menu" .Children}}</li>{{else}}
  <li><a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a></li>{{end}}{{end}}
</ul>{{end}}

{{define "home"}}
<div class="ticker" id="notice">{{if .Notice}}<span>{{.Notice.Content}}</span>{{else}}<span>Welcome! New notices will appear here.</span>{{end}}</div>
<section class="hero">
  <h1>{{.Info.AppName}}</h1>
  <p class="tagline">{{.Info.Tagline}}</p>
  <div class="hero-actions">
    <a class="button primary" href="{{.StartHref}}">Start Learning</a>
    <a class="button" href="{{.RequestHref}}">Request Topic</a>
  </div>
</section>
<section class="panels">
  <div class="panel"><h3>Grammar Made Simple</h3><p>Clear explanations of the rules students need for exams.</p></div>
  <div class="panel"><h3>Model Questions</h3><p>Practice sets prepared from recent board examinations.</p></div>
  <div class="panel"><h3>Writing Skills</h3><p>Paragraphs, compositions, letters and e-mails with worked examples.</p></div>
</section>
<section>
  <h2>Recently Added</h2>
  {{if .Recent}}{{template "cards" .Recent}}{{else}}<p class="empty">No resources have been published yet.</p>{{end}}
</section>
{{end}}

{{define "cards"}}<div class="cards">{{range .}}
  <article class="card">
    <h3>{{.Title}}</h3>
    <p class="meta">{{formatDate .CreatedAt}}</p>
    <p>{{.Description}}</p>
    <a class="button" href="/resources/{{.ID}}">Read Content</a>
  </article>{{end}}
</div>{{end}}

{{define "section"}}
<h1>{{.Heading}}</h1>
{{$n := len .Resources}}
{{if eq .State.ActiveSection "search"}}<p class="count">Found {{$n}} {{plural $n "result" "results"}}</p>
{{else}}<p class="count">{{$n}} {{plural $n "document" "documents"}}</p>{{end}}
{{if .Resources}}
<div class="cards">{{range .Resources}}
  <article class="card">
    {{if eq $.State.ActiveSection "search"}}<span class="badge">{{$.Label .Category}}</span>{{end}}
    <h3>{{.Title}}</h3>
    <p class="meta">{{formatDate .CreatedAt}}</p>
    <p>{{.Description}}</p>
    <a class="button" href="/resources/{{.ID}}">Read Content</a>
  </article>{{end}}
</div>
{{else if eq .State.ActiveSection "search"}}
<div class="empty">
  <p>No results found for "{{.State.SearchQuery}}".</p>
  <a class="button" href="{{.HomeHref}}">Back to Home</a>
</div>
{{else}}
<div class="empty"><p>No content found in this section yet.</p></div>
{{end}}
{{end}}

{{define "resource"}}
{{if .Resource}}
<article class="resource">
  <p class="meta"><span class="badge">{{.Label .Resource.Category}}</span> {{formatDate .Resource.CreatedAt}}</p>
  <h1>{{.Resource.Title}}</h1>
  <div class="resource-body">{{trustedHTML .Resource.Content}}</div>
</article>
{{else}}
<div class="empty">
  <p>This resource no longer exists.</p>
  <a class="button" href="{{.HomeHref}}">Back to Home</a>
</div>
{{end}}
{{end}}

{{define "request"}}
<h1>Student Request</h1>
<p>Need help with a topic? Tell the teacher what you would like to see next.</p>
<form class="form" method="post" action="/student-request">
  <label>Your name
    <input type="text" name="student_name" value="{{.Request.Values.StudentName}}" required>
    {{with fieldError .Request.Errors "student_name"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <label>Class / Roll
    <input type="text" name="class_roll" value="{{.Request.Values.ClassRoll}}" required>
    {{with fieldError .Request.Errors "class_roll"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <label>Topic
    <select name="topic" required>
      <option value="">Select a topic</option>
      {{range .Request.Topics}}<option value="{{.}}"{{if eq . $.Request.Values.Topic}} selected{{end}}>{{.}}</option>{{end}}
    </select>
    {{with fieldError .Request.Errors "topic"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <label>Message
    <textarea name="message" rows="5" required>{{.Request.Values.Message}}</textarea>
    {{with fieldError .Request.Errors "message"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <button class="button primary" type="submit">Send Request</button>
</form>
{{end}}

{{define "admin"}}
<h1>Admin Dashboard</h1>
{{if not .User}}
<form class="form narrow" method="post" action="/admin/login">
  {{if .Admin.LoginError}}<div class="error-banner">{{.Admin.LoginError}}</div>{{end}}
  <label>Email <input type="email" name="email" value="{{.Admin.LoginEmail}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button class="button primary" type="submit">Sign In</button>
</form>
{{else}}
<div class="admin-bar">
  <span>Signed in as {{.User.Email}}</span>
  <form method="post" action="/admin/logout"><button class="button" type="submit">Sign Out</button></form>
</div>
<nav class="tabs">{{range .Admin.Tabs}}<a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
{{if eq .Admin.Tab "content"}}{{template "admin-content" .}}
{{else if eq .Admin.Tab "requests"}}{{template "admin-requests" .}}
{{else if eq .Admin.Tab "notice"}}{{template "admin-notice" .}}
{{else if eq .Admin.Tab "categories"}}{{template "admin-categories" .}}
{{else if eq .Admin.Tab "activity"}}{{template "admin-activity" .}}{{end}}
{{end}}
{{end}}

{{define "admin-content"}}
<form class="form" method="post" action="/admin/resources">
  <h2>Publish Resource</h2>
  <label>Title
    <input type="text" name="title" value="{{.Admin.Form.Title}}" required>
    {{with fieldError .Admin.Errors "title"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <label>Category
    <select name="category" required>
      <option value="">Select a section</option>
      {{range .Admin.Sections}}<option value="{{.ID}}"{{if eq .ID $.Admin.Form.Category}} selected{{end}}>{{.Label}}</option>{{end}}
    </select>
    {{with fieldError .Admin.Errors "category"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <label>Description <small>(optional, derived from the content when empty)</small>
    <input type="text" name="description" value="{{.Admin.Form.Description}}">
    {{with fieldError .Admin.Errors "description"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <label>Content <small>(Markdown)</small>
    <textarea name="content" rows="14" required>{{.Admin.Form.Content}}</textarea>
    {{with fieldError .Admin.Errors "content"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <button class="button primary" type="submit">Publish</button>
</form>
<h2>Published Resources</h2>
{{if .Admin.Resources}}
<table class="table">
  <thead><tr><th>Title</th><th>Section</th><th>Date</th><th></th></tr></thead>
  <tbody>{{range .Admin.Resources}}
    <tr>
      <td><a href="/resources/{{.ID}}">{{.Title}}</a></td>
      <td>{{$.Label .Category}}</td>
      <td>{{formatDate .CreatedAt}}</td>
      <td><form method="post" action="/admin/resources/{{.ID}}/delete" onsubmit="return confirm('Delete this resource?')"><button class="button danger" type="submit">Delete</button></form></td>
    </tr>{{end}}
  </tbody>
</table>
{{else}}<p class="empty">Nothing published yet.</p>{{end}}
{{end}}

{{define "admin-requests"}}
<h2>Student Requests</h2>
{{if .Admin.Requests}}
<table class="table">
  <thead><tr><th>Student</th><th>Class / Roll</th><th>Topic</th><th>Message</th><th>Date</th><th></th></tr></thead>
  <tbody>{{range .Admin.Requests}}
    <tr>
      <td>{{.StudentName}}</td>
      <td>{{.ClassRoll}}</td>
      <td>{{.Topic}}</td>
      <td>{{.Message}}</td>
      <td>{{formatDate .CreatedAt}}</td>
      <td><form method="post" action="/admin/requests/{{.ID}}/delete" onsubmit="return confirm('Delete this request?')"><button class="button danger" type="submit">Delete</button></form></td>
    </tr>{{end}}
  </tbody>
</table>
{{else}}<p class="empty">No student requests.</p>{{end}}
{{end}}

{{define "admin-notice"}}
<h2>Notice Board</h2>
<p>Current notice: {{if .Notice}}<strong>{{.Notice.Content}}</strong>{{else}}<em>none</em>{{end}}</p>
<form class="form" method="post" action="/admin/notice">
  <label>New notice
    <textarea name="content" rows="3" required>{{.Admin.NoticeText}}</textarea>
    {{with fieldError .Admin.Errors "content"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <button class="button primary" type="submit">Post Notice</button>
</form>
{{end}}

{{define "admin-categories"}}
<h2>Categories</h2>
<form class="form" method="post" action="/admin/categories">
  <label>New category
    <input type="text" name="label" value="{{.Admin.CategoryLabel}}" required>
    {{with fieldError .Admin.Errors "label"}}<span class="field-error">{{.}}</span>{{end}}
  </label>
  <button class="button primary" type="submit">Add Category</button>
</form>
{{if .Admin.Categories}}
<table class="table">
  <thead><tr><th>Label</th><th>Section id</th><th></th></tr></thead>
  <tbody>{{range .Admin.Categories}}
    <tr>
      <td>{{.Label}}</td>
      <td><code>{{.ID}}</code></td>
      <td><form method="post" action="/admin/categories/{{.OriginID}}/delete" onsubmit="return confirm('Delete the {{.Label}} category? Its resources stay stored.')"><button class="button danger" type="submit">Delete</button></form></td>
    </tr>{{end}}
  </tbody>
</table>
{{else}}<p class="empty">No custom categories yet.</p>{{end}}
{{end}}

{{define "admin-activity"}}
<h2>Activity</h2>
{{if .Admin.Activity}}
<table class="table">
  <thead><tr><th>When</th><th>Who</th><th>What</th></tr></thead>
  <tbody>{{range .Admin.Activity}}
    <tr><td>{{formatTime .Timestamp}}</td><td>{{.Actor}}</td><td>{{.Summary}}</td></tr>{{end}}
  </tbody>
</table>
{{else}}<p class="empty">No activity recorded.</p>{{end}}
{{end}}
`

const cssContent = `:root {
  --bg: #fffdf7;
  --panel: #ffffff;
  --text: #1f2933;
  --muted: #6b7280;
  --accent: #1d4ed8;
  --danger: #b91c1c;
  --border: #e5e7eb;
}
* { box-sizing: border-box; }
body { margin: 0; font-family: Georgia, "Times New Roman", serif; color: var(--text); background: var(--bg); line-height: 1.6; }
a { color: var(--accent); }
.top-bar { display: flex; align-items: center; justify-content: space-between; padding: 0.75rem 1.5rem; border-bottom: 1px solid var(--border); background: var(--panel); }
.brand { font-weight: bold; font-size: 1.2rem; text-decoration: none; }
.search input { padding: 0.4rem 0.6rem; width: 16rem; }
.layout { display: flex; min-height: 80vh; }
.sidebar { width: 15rem; padding: 1rem; border-right: 1px solid var(--border); }
.sidebar ul { list-style: none; margin: 0; padding-left: 0.5rem; }
.sidebar a { display: block; padding: 0.2rem 0.4rem; text-decoration: none; border-radius: 4px; }
.sidebar a.active { background: var(--accent); color: #fff; }
.sidebar .group > ul { display: none; }
.sidebar .group.expanded > ul, .sidebar .group:hover > ul { display: block; }
.group-label { font-weight: bold; display: block; padding: 0.2rem 0.4rem; }
.content { flex: 1; padding: 1.5rem 2rem; max-width: 60rem; }
.ticker { overflow: hidden; white-space: nowrap; background: #fef3c7; padding: 0.4rem; border-radius: 4px; }
.ticker span { display: inline-block; padding-left: 100%; animation: ticker 20s linear infinite; }
@keyframes ticker { to { transform: translateX(-100%); } }
.hero { text-align: center; padding: 2rem 0; }
.hero-actions { display: flex; gap: 1rem; justify-content: center; }
.panels, .cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(16rem, 1fr)); gap: 1rem; }
.panel, .card { background: var(--panel); border: 1px solid var(--border); border-radius: 6px; padding: 1rem; }
.meta, .count, small { color: var(--muted); }
.badge { background: #e0e7ff; border-radius: 999px; padding: 0 0.6rem; font-size: 0.85rem; }
.button { display: inline-block; padding: 0.4rem 0.9rem; border: 1px solid var(--accent); border-radius: 4px; background: #fff; color: var(--accent); cursor: pointer; text-decoration: none; font: inherit; }
.button.primary { background: var(--accent); color: #fff; }
.button.danger { border-color: var(--danger); color: var(--danger); }
.form { display: grid; gap: 0.8rem; max-width: 40rem; margin-bottom: 2rem; }
.form.narrow { max-width: 22rem; }
.form label { display: grid; gap: 0.2rem; }
.form input, .form select, .form textarea { padding: 0.4rem; font: inherit; }
.field-error, .error-banner { color: var(--danger); }
.error-banner, .flash { padding: 0.6rem; border-radius: 4px; margin-bottom: 1rem; }
.error-banner { background: #fee2e2; }
.flash { background: #dcfce7; }
.empty { color: var(--muted); padding: 1rem 0; }
.tabs { display: flex; gap: 0.5rem; border-bottom: 1px solid var(--border); margin-bottom: 1rem; }
.tabs a { padding: 0.4rem 0.8rem; text-decoration: none; }
.tabs a.active { border-bottom: 2px solid var(--accent); }
.admin-bar { display: flex; justify-content: space-between; align-items: center; }
.table { width: 100%; border-collapse: collapse; }
.table th, .table td { text-align: left; padding: 0.4rem; border-bottom: 1px solid var(--border); vertical-align: top; }
.footer { text-align: center; color: var(--muted); border-top: 1px solid var(--border); padding: 1rem; }
`

const jsContent = `(function() {
  if (!window.WebSocket) return;
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws/live");

  function pageHref(id) {
    var params = new URLSearchParams(location.search);
    params.delete("q");
    params.delete("tab");
    if (id === "home") params.delete("page"); else params.set("page", id);
    var qs = params.toString();
    return "/" + (qs ? "?" + qs : "");
  }

  function renderMenu(items) {
    var active = new URLSearchParams(location.search).get("page") || "home";
    var ul = document.createElement("ul");
    items.forEach(function(item) {
      var li = document.createElement("li");
      if (item.children && item.children.length) {
        li.className = "group";
        var span = document.createElement("span");
        span.className = "group-label";
        span.textContent = item.label;
        li.appendChild(span);
        li.appendChild(renderMenu(item.children));
      } else {
        var a = document.createElement("a");
        a.href = pageHref(item.id);
        a.textContent = item.label;
        if (item.id === active) a.className = "active";
        li.appendChild(a);
      }
      ul.appendChild(li);
    });
    return ul;
  }

  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "notice" && msg.notice) {
      var ticker = document.getElementById("notice");
      if (ticker) {
        var span = document.createElement("span");
        span.textContent = msg.notice.content;
        ticker.replaceChildren(span);
      }
    } else if (msg.type === "nav" && msg.nav) {
      var menu = document.getElementById("menu");
      if (menu) menu.replaceChildren(renderMenu(msg.nav));
    }
  };
})();
`
