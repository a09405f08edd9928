package domain

// CourseStatus is the admin approval state of a course.
type CourseStatus string

const (
	CoursePending  CourseStatus = "pending"
	CourseApproved CourseStatus = "approved"
	CourseRejected CourseStatus = "rejected"
	CourseFlagged  CourseStatus = "flagged"
)

// ValidCourseStatus reports whether s is a known approval state. Admins may
// move a course between any of these states.
func ValidCourseStatus(s CourseStatus) bool {
	switch s {
	case CoursePending, CourseApproved, CourseRejected, CourseFlagged:
		return true
	}
	return false
}

// Course is the metadata item at COURSE#<id>/METADATA. CategoryName is
// denormalized from the category at write time and is not refreshed when the
// category is renamed. Rating aggregates mirror the course's Rating items and
// are eventually consistent with them.
type Course struct {
	ID           string       `json:"id" dynamodbav:"id"`
	Title        string       `json:"title" dynamodbav:"title"`
	Description  string       `json:"description" dynamodbav:"description"`
	InstructorID string       `json:"instructorId" dynamodbav:"instructorId"`
	Price        float64      `json:"price" dynamodbav:"price"`
	ImageKey     string       `json:"imageKey,omitempty" dynamodbav:"imageKey,omitempty"`
	CategoryID   string       `json:"categoryId,omitempty" dynamodbav:"categoryId,omitempty"`
	CategoryName string       `json:"categoryName,omitempty" dynamodbav:"categoryName,omitempty"`
	Status       CourseStatus `json:"status" dynamodbav:"status"`

	AverageRating      float64        `json:"averageRating" dynamodbav:"averageRating"`
	RatingCount        int            `json:"ratingCount" dynamodbav:"ratingCount"`
	RatingDistribution map[string]int `json:"ratingDistribution,omitempty" dynamodbav:"ratingDistribution,omitempty"`

	ModeratedBy      string `json:"moderatedBy,omitempty" dynamodbav:"moderatedBy,omitempty"`
	ModeratedAt      string `json:"moderatedAt,omitempty" dynamodbav:"moderatedAt,omitempty"`
	ModerationReason string `json:"moderationReason,omitempty" dynamodbav:"moderationReason,omitempty"`

	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// OwnedBy reports whether userID is the course's instructor. Handlers enforce
// ownership; the repository layer only reports it.
func (c *Course) OwnedBy(userID string) bool {
	return c.InstructorID == userID
}

// Lecture is a video lecture at COURSE#<cid>/LECTURE#<lid>. Listing order is
// lexicographic over lecture IDs; Position is persisted for clients that want
// an explicit order.
type Lecture struct {
	ID              string `json:"id" dynamodbav:"id"`
	CourseID        string `json:"courseId" dynamodbav:"courseId"`
	Title           string `json:"title" dynamodbav:"title"`
	VideoKey        string `json:"videoKey" dynamodbav:"videoKey"`
	DurationSeconds int    `json:"durationSeconds,omitempty" dynamodbav:"durationSeconds,omitempty"`
	Position        int    `json:"position,omitempty" dynamodbav:"position,omitempty"`
	CreatedAt       string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt       string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// RatingStars are the five star values of the rating distribution.
var RatingStars = []string{"1", "2", "3", "4", "5"}

// EmptyDistribution returns a zeroed five-star distribution.
func EmptyDistribution() map[string]int {
	return map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
}
