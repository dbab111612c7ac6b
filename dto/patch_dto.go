package dto

type VendorConnectionDTO struct {
	VendorID string `json:"vendorId" binding:"required"`
}
