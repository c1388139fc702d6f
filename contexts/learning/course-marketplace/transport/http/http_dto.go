package httptransport

type CourseDTO struct {
	CourseID      uint64   `json:"course_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Instructor    string   `json:"instructor"`
	Duration      uint64   `json:"duration"`
	SkillLevel    string   `json:"skill_level"`
	Prerequisites []string `json:"prerequisites"`
	Price         uint64   `json:"price"`
	Students      []string `json:"students"`
	Graduates     []string `json:"graduates"`
	CreatedAt     string   `json:"created_at"`
}

type ListCoursesResponse struct {
	Items []CourseDTO `json:"items"`
}

type GetCourseResponse struct {
	Item CourseDTO `json:"item"`
}

type CreateCourseRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Duration      uint64   `json:"duration"`
	SkillLevel    string   `json:"skill_level"`
	Prerequisites []string `json:"prerequisites"`
	Price         uint64   `json:"price"`
}

type CreateCourseResponse struct {
	CourseID uint64    `json:"course_id"`
	Item     CourseDTO `json:"item"`
}

type EnrollmentResponse struct {
	CourseID uint64 `json:"course_id"`
	Student  string `json:"student"`
	Status   string `json:"status"`
}

type TransactionDTO struct {
	TransactionID string `json:"transaction_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        uint64 `json:"amount"`
	Memo          string `json:"memo"`
	Status        string `json:"status"`
	SettlementRef string `json:"settlement_ref,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	SettledAt     string `json:"settled_at,omitempty"`
}

type BuyCourseResponse struct {
	CourseID    uint64         `json:"course_id"`
	Transaction TransactionDTO `json:"transaction"`
}

type ListTransactionsResponse struct {
	Items []TransactionDTO `json:"items"`
}

type RegisterUserRequest struct {
	Username string   `json:"username"`
	Bio      string   `json:"bio"`
	Skills   []string `json:"skills"`
}

type UserDTO struct {
	Identity         string   `json:"identity"`
	Username         string   `json:"username"`
	Bio              string   `json:"bio"`
	Skills           []string `json:"skills"`
	EnrolledCourses  []uint64 `json:"enrolled_courses"`
	CompletedCourses []uint64 `json:"completed_courses"`
	PurchasedCourses []uint64 `json:"purchased_courses"`
	RegisteredAt     string   `json:"registered_at"`
}

type UserResponse struct {
	Item UserDTO `json:"item"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
