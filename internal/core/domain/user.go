package domain

// UserProfile is the snapshot of a user embedded in order summaries.
type UserProfile struct {
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PhoneNo      string `json:"phoneNo"`
	HostelName   string `json:"hostelName"`
	RoomNumber   string `json:"roomNumber"`
	ProfileImage string `json:"profileImage"`
	Location     string `json:"location"`
}

type Product struct {
	ID          int64  `json:"productId"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}
