package domain

// Enrollment is the item at USER#<uid>/ENROLLMENT#<cid>. Exactly one exists
// per (user, course); course title, price and image are denormalized at
// purchase time so "my courses" listings need no course reads. Enrollments
// are never deleted, even when their course is.
type Enrollment struct {
	UserID   string `json:"userId" dynamodbav:"userId"`
	CourseID string `json:"courseId" dynamodbav:"courseId"`

	CourseTitle    string  `json:"courseTitle" dynamodbav:"courseTitle"`
	CoursePrice    float64 `json:"coursePrice" dynamodbav:"coursePrice"`
	CourseImageKey string  `json:"courseImageKey,omitempty" dynamodbav:"courseImageKey,omitempty"`

	// Progress holds the IDs of completed lectures. Replaced wholesale on
	// every progress update; last write wins under concurrency.
	Progress    []string `json:"progress" dynamodbav:"progress"`
	CompletedAt string   `json:"completedAt,omitempty" dynamodbav:"completedAt,omitempty"`

	EnrolledAt string `json:"enrolledAt" dynamodbav:"enrolledAt"`
	UpdatedAt  string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Rating is the item at USER#<uid>/RATING#<cid>; one per (user, course).
// Every mutation triggers a full aggregate recompute on the course.
type Rating struct {
	UserID    string `json:"userId" dynamodbav:"userId"`
	CourseID  string `json:"courseId" dynamodbav:"courseId"`
	Rating    int    `json:"rating" dynamodbav:"rating"`
	Review    string `json:"review,omitempty" dynamodbav:"review,omitempty"`
	UserName  string `json:"userName,omitempty" dynamodbav:"userName,omitempty"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Category is the item at CATEGORY#<id>/METADATA.
type Category struct {
	ID          string `json:"id" dynamodbav:"id"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	CreatedAt   string `json:"createdAt" dynamodbav:"createdAt"`
}
