package forms

// TaskCreate is the body of POST /api/tasks.
type TaskCreate struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
	Status      *string `json:"status" validate:"omitnil,max=50"`
}

// TaskUpdate is the body of PUT /api/tasks/:id. Nil fields are left as is.
type TaskUpdate struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
	Status      *string `json:"status" validate:"omitnil,notblank,max=50"`
}

// TaskQuery holds the listing query string. Zero Page and Limit select
// the defaults.
type TaskQuery struct {
	Page   int
	Limit  int
	Status string
}
