package auth

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserIDKey = "user_id"
	flashErrorsKey   = "flash_errors"
	flashOldKey      = "flash_old"
	flashStatusKey   = "flash_status"
)

func init() {
	// Cookie sessions are gob-encoded.
	gob.Register(map[string]string{})
}

// flashErrors stores field errors and retained old input for the next
// request. Password values must never appear in old.
func flashErrors(c *gin.Context, fieldErrors, old map[string]string) {
	session := sessions.Default(c)
	session.Set(flashErrorsKey, fieldErrors)
	session.Set(flashOldKey, old)
	_ = session.Save()
}

func flashStatus(c *gin.Context, status string) {
	session := sessions.Default(c)
	session.Set(flashStatusKey, status)
	_ = session.Save()
}

// consumeFlash pops the flashed form state. Flash data lives for
// exactly one read.
func consumeFlash(c *gin.Context) (fieldErrors, old map[string]string, status string) {
	session := sessions.Default(c)

	if v, ok := session.Get(flashErrorsKey).(map[string]string); ok {
		fieldErrors = v
	}
	if v, ok := session.Get(flashOldKey).(map[string]string); ok {
		old = v
	}
	if v, ok := session.Get(flashStatusKey).(string); ok {
		status = v
	}

	session.Delete(flashErrorsKey)
	session.Delete(flashOldKey)
	session.Delete(flashStatusKey)
	_ = session.Save()

	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	if old == nil {
		old = map[string]string{}
	}
	return fieldErrors, old, status
}
