package api

import (
	"net/http"
	"strings"
)

// Override honors the _method form field on POST requests, HTML forms
// cannot submit PUT or DELETE on their own. Only those two methods can be
// assumed, anything else keeps the request as it arrived.
func Override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch strings.ToUpper(r.PostFormValue("_method")) {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
