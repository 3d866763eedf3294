package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type GameRequestCreatedMailData struct {
	RecipientName string `json:"recipientName"`
	SenderName    string `json:"senderName"`
	GameName      string `json:"gameName"`
	SuggestedTime string `json:"suggestedTime"`
	Message       string `json:"message"`
}

type GameRequestAnsweredMailData struct {
	SenderName    string `json:"senderName"`
	RecipientName string `json:"recipientName"`
	GameName      string `json:"gameName"`
	SuggestedTime string `json:"suggestedTime"`
}

type GameRequestCancelledMailData struct {
	RecipientName string `json:"recipientName"`
	SenderName    string `json:"senderName"`
	GameName      string `json:"gameName"`
	SuggestedTime string `json:"suggestedTime"`
}
