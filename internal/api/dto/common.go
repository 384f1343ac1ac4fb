// Package dto provides request and response types shared by the mailib API handlers.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}

// IDParam is a path parameter for resource IDs.
type IDParam struct {
	ID string `path:"id" doc:"Resource identifier"`
}

// BookPath addresses a book by identity space and identifier.
type BookPath struct {
	Type string `path:"type" enum:"fantlab_work,fantlab_edition,inner_db_work" doc:"Identity space of the identifier"`
	ID   string `path:"id" maxLength:"64" doc:"Internal uuid or external id"`
}
