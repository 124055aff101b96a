package dto

// CreateRideRequest is a client's service request.
type CreateRideRequest struct {
	ClientID      string `json:"clientId" binding:"required"`
	StartLocation string `json:"startLocation" binding:"required"`
	EndLocation   string `json:"endLocation" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
	RequestType   string `json:"requestType"`
}

// AcceptRideRequest is a driver's acceptance attempt.
type AcceptRideRequest struct {
	DriverID string `json:"driverId" binding:"required"`
}

// LoginRequest is the unified login body for admins, drivers and clients.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterClientRequest registers a rider account.
type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	CPF      string `json:"cpf" binding:"required"`
	Phone    string `json:"phoneNumber" binding:"required"`
	City     string `json:"city" binding:"required"`
}

// RegisterDriverRequest registers a driver account. Document photos are
// plain URLs; upload and storage happen elsewhere.
type RegisterDriverRequest struct {
	Name            string `json:"name" binding:"required"`
	Age             string `json:"age"`
	MaritalStatus   string `json:"maritalStatus"`
	CPF             string `json:"cpf" binding:"required"`
	Phone           string `json:"phoneNumber" binding:"required"`
	City            string `json:"city" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	LicensePhotoURL string `json:"cnhPhotoUrl" binding:"required"`
	VehicleDocURL   string `json:"motoDocUrl" binding:"required"`
	ProfilePhotoURL string `json:"profilePhotoUrl" binding:"required"`
	VehicleModel    string `json:"vehicleModel"`
	VehiclePlate    string `json:"vehiclePlate"`
}

// SendChatRequest posts one message to a ride's feed.
type SendChatRequest struct {
	RideID   string `json:"rideId" binding:"required"`
	SenderID string `json:"senderId" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// AdminCreateRideRequest creates a ride on a client's behalf.
type AdminCreateRideRequest struct {
	StartLocation string `json:"startLocation" binding:"required"`
	EndLocation   string `json:"endLocation" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	RequestType   string `json:"requestType"`
}
