package types

// BookmarkRequest is the payload of POST /bookmark.
type BookmarkRequest struct {
	// Page URL to store.
	// example: https://example.com/article
	URL string `json:"url" example:"https://example.com/article"`
	// Page title.
	// example: Example Article
	Title string `json:"title" example:"Example Article"`
	// Optional category; also selects the notification route.
	// example: work
	Category string `json:"category,omitempty" example:"work"`
}

// BookmarkResponse is returned with 201 once the bookmark is stored.
type BookmarkResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: Bookmark stored
	Message string `json:"message" example:"Bookmark stored"`
	// Identifier assigned to the stored bookmark.
	// example: 3f1c9a5e-2b7d-4c1e-9a51-0f3e2d9c8b7a
	ID string `json:"id,omitempty" example:"3f1c9a5e-2b7d-4c1e-9a51-0f3e2d9c8b7a"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
