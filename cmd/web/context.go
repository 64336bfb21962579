package main

import "net/http"

type contextKey string

const requestIDContextKey contextKey = "requestID"

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}
