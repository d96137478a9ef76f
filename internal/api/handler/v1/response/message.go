package response

type ReceivedCountResponse struct {
	Count int64 `json:"count"`
}

type ProfilePictureResponse struct {
	ProfilePicture string `json:"profile_picture"`
}
