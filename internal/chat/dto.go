package chat

type MessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RequestDTO struct {
	Messages []MessageDTO `json:"messages" validate:"required,min=1,max=50,dive"`
}

type ReplyResponse struct {
	Message string `json:"message"`
}
