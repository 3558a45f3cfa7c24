package api

import "html/template"

// Presentation is not this server's business, the forms below are the
// bare minimum for a browser to drive every route.

const loginFormHTML = `<form method="POST" action="/login">
<input name="handle" placeholder="handle">
<input name="password" type="password" placeholder="password">
<button>log in</button>
</form>`

const registerFormHTML = `<form method="POST" action="/register">
<input name="handle" placeholder="handle">
<input name="password" type="password" placeholder="password">
<input name="password-confirm" type="password" placeholder="confirm password">
<button>register</button>
</form>`

const writeFormHTML = `<form method="POST" action="/post/write">
<input name="title" placeholder="title">
<textarea name="content"></textarea>
<button>publish</button>
</form>`

var updateFormTmpl = template.Must(template.New("update").Parse(`<form method="POST" action="/post/update/{{.ID}}">
<input type="hidden" name="_method" value="put">
<input name="title" value="{{.Title}}">
<textarea name="content">{{.Content}}</textarea>
<button>save</button>
</form>`))
