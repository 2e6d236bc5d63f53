package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	flashKey    = "session.flashes"
	secureKey   = "session.secure"
)

// Flash categories understood by the templates.
const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryDanger  = "danger"
)

// FlashMessage is a one-shot message shown on the next rendered page.
type FlashMessage struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Flash queues a message for the next page the client renders, across redirects.
func Flash(c *gin.Context, category, message string) {
	list := flashes(c)
	*list = append(*list, FlashMessage{Category: category, Message: message})
	writeFlashCookie(c, *list)
}

// Flashes returns and consumes every queued message.
func Flashes(c *gin.Context) []FlashMessage {
	list := flashes(c)
	out := *list
	*list = nil
	if _, err := c.Cookie(flashCookie); len(out) > 0 || err == nil {
		writeFlashCookie(c, nil)
	}
	return out
}

func flashes(c *gin.Context) *[]FlashMessage {
	if v, ok := c.Get(flashKey); ok {
		return v.(*[]FlashMessage)
	}

	list := new([]FlashMessage)
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		if data, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
			_ = json.Unmarshal(data, list)
		}
	}
	c.Set(flashKey, list)
	return list
}

// writeFlashCookie marks the cookie Secure when Manager.Middleware ran for a secure manager.
func writeFlashCookie(c *gin.Context, list []FlashMessage) {
	secure := c.GetBool(secureKey)
	c.SetSameSite(http.SameSiteLaxMode)
	if len(list) == 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", secure, true)
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 0, "/", "", secure, true)
}
