package course

import "errors"

type Course struct {
	ID          int64   `json:"course_id"`
	Code        string  `json:"course_code"`
	Name        string  `json:"course_name"`
	Description string  `json:"description,omitempty"`
	Credits     float64 `json:"credits"`
	TuitionFees float64 `json:"tuition_fees"`
	Capacity    int     `json:"capacity"`
}

var (
	ErrNotFound  = errors.New("course not found")
	ErrCodeTaken = errors.New("course code already exists")
)

type CreateRequest struct {
	Code        string   `json:"course_code" binding:"required,min=2,max=20"`
	Name        string   `json:"course_name" binding:"required,min=2,max=120"`
	Description string   `json:"description" binding:"omitempty,max=1000"`
	Credits     *float64 `json:"credits" binding:"required,min=0"`
	TuitionFees *float64 `json:"tuition_fees" binding:"required,min=0"`
	Capacity    *int     `json:"capacity" binding:"required,min=0"`
}

// Partial update: nil fields keep the stored value.
type UpdateRequest struct {
	Code        *string  `json:"course_code" binding:"omitempty,min=2,max=20"`
	Name        *string  `json:"course_name" binding:"omitempty,min=2,max=120"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Credits     *float64 `json:"credits" binding:"omitempty,min=0"`
	TuitionFees *float64 `json:"tuition_fees" binding:"omitempty,min=0"`
	Capacity    *int     `json:"capacity" binding:"omitempty,min=0"`
}

// NewFromCreateRequest builds a Course from the incoming DTO. The ID is
// assigned by the database on insert.
func NewFromCreateRequest(req CreateRequest) Course {
	c := Course{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}

	if req.Credits != nil {
		c.Credits = *req.Credits
	}
	if req.TuitionFees != nil {
		c.TuitionFees = *req.TuitionFees
	}
	if req.Capacity != nil {
		c.Capacity = *req.Capacity
	}

	return c
}
