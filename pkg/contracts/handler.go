package contracts

import (
	"github.com/julienschmidt/httprouter"
)

// Handler is what every domain handler exposes to the application wiring.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
