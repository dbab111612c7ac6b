package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs method, path and client IP, plus the JSON body of
// POST/PUT requests with password and code fields hidden.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		log.Printf("%s %s - %s", method, c.Request.URL.Path, c.ClientIP())

		if (method == "POST" || method == "PUT") && c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(raw))

				var body map[string]interface{}
				if json.Unmarshal(raw, &body) == nil {
					if _, ok := body["password"]; ok {
						body["password"] = "[HIDDEN]"
					}
					if _, ok := body["code"]; ok {
						body["code"] = "[HIDDEN]"
					}
					if redacted, err := json.Marshal(body); err == nil {
						log.Printf("Request Body: %s", redacted)
					}
				}
			}
		}

		c.Next()
	}
}
