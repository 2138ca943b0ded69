package devserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xiaoen-app/appcore/pkg/api"
)

func withUser(r *http.Request, userId int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, userId))
}

func requestUser(r *http.Request) int64 {
	userId, _ := r.Context().Value(userKey).(int64)
	return userId
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, 40000, "请求格式错误")
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, map[string]interface{}{
		"code": api.CodeOK,
		"data": data,
	})
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, map[string]interface{}{
		"code": code,
		"msg":  msg,
	})
}

// writeLike reports the new like state beside the envelope, the way
// the production like endpoints do.
func writeLike(w http.ResponseWriter, liked bool, count int64) {
	status := int8(0)
	if liked {
		status = 1
	}
	writeJSON(w, map[string]interface{}{
		"code":        api.CodeOK,
		"like_status": status,
		"like_count":  count,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	marshaled, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(marshaled)
}
