package unify

// Capabilities is the fixed-shape feature matrix one adapter declares at
// construction. A flag is true only when the operation is fully implemented
// and semantically equivalent to the unified vocabulary; a platform feature
// that exists only in degraded form stays false and is reachable, if at all,
// through a platform extension point.
//
// Instances are populated from a static table, returned by pointer, and
// must never be mutated after construction.
type Capabilities struct {
	Base         BaseCaps         `json:"base"`
	Conversation ConversationCaps `json:"conversation"`
	Interaction  InteractionCaps  `json:"interaction"`
	Discovery    DiscoveryCaps    `json:"discovery"`
	Management   ManagementCaps   `json:"management"`
	Advanced     AdvancedCaps     `json:"advanced"`
}

type BaseCaps struct {
	SendText      bool `json:"send_text"`
	SendMedia     bool `json:"send_media"`
	EditMessage   bool `json:"edit_message"`
	DeleteMessage bool `json:"delete_message"`
}

type ConversationCaps struct {
	Replies bool `json:"replies"`
	Threads bool `json:"threads"`
	Forward bool `json:"forward"`
}

type InteractionCaps struct {
	Reactions bool `json:"reactions"`
	Buttons   bool `json:"buttons"`
	Polls     bool `json:"polls"`
}

type DiscoveryCaps struct {
	FetchUser   bool `json:"fetch_user"`
	FetchChat   bool `json:"fetch_chat"`
	ListMembers bool `json:"list_members"`
}

type ManagementCaps struct {
	Kick    bool `json:"kick"`
	Ban     bool `json:"ban"`
	Mute    bool `json:"mute"`
	Pin     bool `json:"pin"`
	Invites bool `json:"invites"`
}

type AdvancedCaps struct {
	Stickers        bool `json:"stickers"`
	Voice           bool `json:"voice"`
	TypingIndicator bool `json:"typing_indicator"`
	SlashCommands   bool `json:"slash_commands"`
}
