package enums

type BotType string

const (
	BotTypePending   BotType = "pending"
	BotTypeApproved  BotType = "approved"
	BotTypeDenied    BotType = "denied"
	BotTypeCertified BotType = "certified"
)
