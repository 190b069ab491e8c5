package http

import (
	"net/http"

	"github.com/dkeye/signalmaster/internal/adapters/signal"
	"github.com/dkeye/signalmaster/internal/app"
	"github.com/gin-gonic/gin"
)

// AdmissionMiddleware refuses the upgrade unless the session cookie names a
// participant the access store lets into the room. All refusals look alike.
func AdmissionMiddleware(cookieName string, gate *app.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		// gin unescapes the value, so %3D padding arrives as '='
		raw, _ := c.Cookie(cookieName)
		claim, err := gate.Admit(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized"})
			return
		}
		c.Set(signal.ClaimContextKey, claim)
		c.Next()
	}
}
