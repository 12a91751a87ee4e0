package minigram

import "time"

// Photo is a photo media variant.
type Photo struct {
	FileID     int64
	AccessHash int64
	Date       time.Time
	Width      int
	Height     int
	FileSize   int64
	TTLSeconds int
	HasSpoiler bool
	IsViewOnce bool
}

// Animation is a GIF-like soundless looping video variant.
type Animation struct {
	FileID     int64
	AccessHash int64
	Width      int
	Height     int
	Duration   time.Duration
	FileName   string
	MimeType   string
	FileSize   int64
	HasSpoiler bool
}

// Sticker is a sticker document variant.
type Sticker struct {
	FileID     int64
	AccessHash int64
	Width      int
	Height     int
	Emoji      string
	SetID      int64
	IsAnimated bool
	IsVideo    bool
	FileSize   int64
}

// Video is a plain video document variant.
type Video struct {
	FileID            int64
	AccessHash        int64
	Width             int
	Height            int
	Duration          time.Duration
	FileName          string
	MimeType          string
	FileSize          int64
	SupportsStreaming bool
	TTLSeconds        int
	HasSpoiler        bool
	IsViewOnce        bool
}

// VideoNote is a round video message variant.
type VideoNote struct {
	FileID     int64
	AccessHash int64
	Length     int
	Duration   time.Duration
	FileSize   int64
	TTLSeconds int
	IsViewOnce bool
}

// Voice is a voice recording variant.
type Voice struct {
	FileID     int64
	AccessHash int64
	Duration   time.Duration
	MimeType   string
	FileSize   int64
	Waveform   []byte
	TTLSeconds int
	IsViewOnce bool
}

// Audio is a music file variant.
type Audio struct {
	FileID     int64
	AccessHash int64
	Duration   time.Duration
	Performer  string
	Title      string
	FileName   string
	MimeType   string
	FileSize   int64
}

// Document is the generic file attachment variant.
type Document struct {
	FileID     int64
	AccessHash int64
	FileName   string
	MimeType   string
	FileSize   int64
	Date       time.Time
}

// WebPage is an instant-view style web page preview.
type WebPage struct {
	ID          int64
	URL         string
	DisplayURL  string
	SiteName    string
	Title       string
	Description string
	Kind        string
}

// Location is a geographic point variant.
type Location struct {
	Longitude float64
	Latitude  float64
	Accuracy  float64
}

// Contact is a shared phone contact variant.
type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
	VCard       string
}

// Venue is a location with attached place metadata.
type Venue struct {
	Location       Location
	Title          string
	Address        string
	FoursquareID   string
	FoursquareType string
}

// Game is an HTML5 game attachment variant.
type Game struct {
	ID          int64
	Title       string
	ShortName   string
	Description string
}

// PollOption is one answer in a poll.
type PollOption struct {
	Text       string
	VoterCount int
	Data       []byte
}

// Poll is a poll media variant. Polls mutate server-side after delivery.
type Poll struct {
	ID                    int64
	Question              string
	Options               []PollOption
	TotalVoterCount       int
	IsClosed              bool
	IsAnonymous           bool
	AllowsMultipleAnswers bool
	IsQuiz                bool
}

// Dice is an animated emoji with a random value.
type Dice struct {
	Emoji string
	Value int
}

// Story references a story shared into a chat.
type Story struct {
	ChatID int64
	ID     int
}

// Giveaway describes a premium giveaway announcement.
type Giveaway struct {
	ChannelIDs         []int64
	Quantity           int
	Months             int
	UntilDate          time.Time
	OnlyNewSubscribers bool
	PrizeDescription   string
	Countries          []string
}

// GiveawayWinners describes the published results of a giveaway.
type GiveawayWinners struct {
	ChannelID          int64
	LaunchMessageID    int
	WinnersCount       int
	UnclaimedCount     int
	WinnerIDs          []int64
	Months             int
	UntilDate          time.Time
	PrizeDescription   string
	OnlyNewSubscribers bool
}

// Invoice describes a payment request attachment.
type Invoice struct {
	Title       string
	Description string
	Currency    string
	TotalAmount int64
	StartParam  string
	IsTest      bool
}
