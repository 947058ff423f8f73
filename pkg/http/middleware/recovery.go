package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "ScalpSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into a logged error and, if nothing has
// been written yet, the standard 500 envelope. The server keeps running.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				l.Error("http handler panic",
					applogger.Error(perr),
					applogger.String("method", c.Request().Method),
					applogger.String("path", c.Path()),
					applogger.String("stack", string(debug.Stack())),
				)
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusOK, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": http.StatusText(http.StatusInternalServerError),
				})
			}()
			return next(c)
		}
	}
}
