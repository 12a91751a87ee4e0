package normalize

import (
	"bytes"
	"math"
	"time"

	"github.com/gotd/td/tg"

	"minigram/pkg/minigram"
)

// mediaResult is the outcome of classifying one raw media envelope: at most
// one populated variant, plus link-preview state that lives outside the
// variant set.
type mediaResult struct {
	mediaType minigram.MediaType
	spoiler   bool

	photo           *minigram.Photo
	animation       *minigram.Animation
	sticker         *minigram.Sticker
	video           *minigram.Video
	videoNote       *minigram.VideoNote
	voice           *minigram.Voice
	audio           *minigram.Audio
	document        *minigram.Document
	location        *minigram.Location
	contact         *minigram.Contact
	venue           *minigram.Venue
	game            *minigram.Game
	poll            *minigram.Poll
	dice            *minigram.Dice
	story           *minigram.Story
	giveaway        *minigram.Giveaway
	giveawayWinners *minigram.GiveawayWinners
	invoice         *minigram.Invoice

	webPage     *minigram.WebPage
	webPageURL  string
	linkPreview *minigram.LinkPreviewOptions
}

// hasVariant reports whether a media variant was recognized. Web page
// previews do not count: they accompany text instead of replacing it.
func (r *mediaResult) hasVariant() bool {
	return r.mediaType != ""
}

// classifyMedia maps a raw media envelope to exactly one normalized variant.
// Unknown envelopes yield an empty result, never an error.
func classifyMedia(media tg.MessageMediaClass, msg *tg.Message) mediaResult {
	var r mediaResult
	if media == nil {
		return r
	}

	switch typed := media.(type) {
	case *tg.MessageMediaPhoto:
		if photo := parsePhotoEnvelope(typed); photo != nil {
			r.photo = photo
			r.mediaType = minigram.MediaTypePhoto
			r.spoiler = typed.Spoiler
		}
	case *tg.MessageMediaGeo:
		if loc := parseGeoPoint(typed.Geo); loc != nil {
			r.location = loc
			r.mediaType = minigram.MediaTypeLocation
		}
	case *tg.MessageMediaContact:
		r.contact = &minigram.Contact{
			PhoneNumber: typed.PhoneNumber,
			FirstName:   typed.FirstName,
			LastName:    typed.LastName,
			UserID:      typed.UserID,
			VCard:       typed.Vcard,
		}
		r.mediaType = minigram.MediaTypeContact
	case *tg.MessageMediaVenue:
		venue := &minigram.Venue{
			Title:          typed.Title,
			Address:        typed.Address,
			FoursquareID:   typed.VenueID,
			FoursquareType: typed.VenueType,
		}
		if loc := parseGeoPoint(typed.Geo); loc != nil {
			venue.Location = *loc
		}
		r.venue = venue
		r.mediaType = minigram.MediaTypeVenue
	case *tg.MessageMediaGame:
		r.game = &minigram.Game{
			ID:          typed.Game.ID,
			Title:       typed.Game.Title,
			ShortName:   typed.Game.ShortName,
			Description: typed.Game.Description,
		}
		r.mediaType = minigram.MediaTypeGame
	case *tg.MessageMediaDocument:
		classifyDocument(typed, &r)
	case *tg.MessageMediaWebPage:
		classifyWebPage(typed, msg, &r)
	case *tg.MessageMediaPoll:
		r.poll = parsePoll(typed)
		r.mediaType = minigram.MediaTypePoll
	case *tg.MessageMediaDice:
		r.dice = &minigram.Dice{Emoji: typed.Emoticon, Value: typed.Value}
		r.mediaType = minigram.MediaTypeDice
	case *tg.MessageMediaStory:
		r.story = &minigram.Story{ChatID: PeerChatID(typed.Peer), ID: typed.ID}
		r.mediaType = minigram.MediaTypeStory
	case *tg.MessageMediaGiveaway:
		r.giveaway = parseGiveaway(typed)
		r.mediaType = minigram.MediaTypeGiveaway
	case *tg.MessageMediaGiveawayResults:
		r.giveawayWinners = parseGiveawayResults(typed)
		r.mediaType = minigram.MediaTypeGiveawayWinners
	case *tg.MessageMediaInvoice:
		r.invoice = &minigram.Invoice{
			Title:       typed.Title,
			Description: typed.Description,
			Currency:    typed.Currency,
			TotalAmount: typed.TotalAmount,
			StartParam:  typed.StartParam,
			IsTest:      typed.Test,
		}
		r.mediaType = minigram.MediaTypeInvoice
	}

	return r
}

// classifyDocument picks the variant for a document envelope by attribute
// priority: animation, then sticker, then video (round videos become video
// notes), then audio (voice flags become voice notes), then plain document.
func classifyDocument(media *tg.MessageMediaDocument, r *mediaResult) {
	ttl, _ := media.GetTTLSeconds()

	doc, ok := rawDocument(media)
	if !ok {
		// Some envelopes arrive without the document body, carrying only
		// the kind flags. Keep the variant tag so routing still works.
		r.spoiler = media.Spoiler
		switch {
		case media.Video:
			r.video = &minigram.Video{
				TTLSeconds: ttl,
				IsViewOnce: isViewOnceTTL(ttl),
				HasSpoiler: media.Spoiler,
			}
			r.mediaType = minigram.MediaTypeVideo
		case media.Round:
			r.videoNote = &minigram.VideoNote{
				TTLSeconds: ttl,
				IsViewOnce: isViewOnceTTL(ttl),
			}
			r.mediaType = minigram.MediaTypeVideoNote
		case media.Voice:
			r.voice = &minigram.Voice{
				TTLSeconds: ttl,
				IsViewOnce: isViewOnceTTL(ttl),
			}
			r.mediaType = minigram.MediaTypeVoice
		}
		return
	}

	var (
		fileName    string
		animated    bool
		stickerAttr *tg.DocumentAttributeSticker
		videoAttr   *tg.DocumentAttributeVideo
		audioAttr   *tg.DocumentAttributeAudio
		imageAttr   *tg.DocumentAttributeImageSize
	)
	for _, attr := range doc.Attributes {
		switch typed := attr.(type) {
		case *tg.DocumentAttributeFilename:
			fileName = typed.FileName
		case *tg.DocumentAttributeAnimated:
			animated = true
		case *tg.DocumentAttributeSticker:
			stickerAttr = typed
		case *tg.DocumentAttributeVideo:
			videoAttr = typed
		case *tg.DocumentAttributeAudio:
			audioAttr = typed
		case *tg.DocumentAttributeImageSize:
			imageAttr = typed
		}
	}

	switch {
	case animated:
		animation := &minigram.Animation{
			FileID:     doc.ID,
			AccessHash: doc.AccessHash,
			FileName:   fileName,
			MimeType:   doc.MimeType,
			FileSize:   doc.Size,
			HasSpoiler: media.Spoiler,
		}
		if videoAttr != nil {
			animation.Width = videoAttr.W
			animation.Height = videoAttr.H
			animation.Duration = secondsToDuration(videoAttr.Duration)
		} else if imageAttr != nil {
			animation.Width = imageAttr.W
			animation.Height = imageAttr.H
		}
		r.animation = animation
		r.mediaType = minigram.MediaTypeAnimation
		r.spoiler = media.Spoiler
	case stickerAttr != nil:
		sticker := &minigram.Sticker{
			FileID:     doc.ID,
			AccessHash: doc.AccessHash,
			Emoji:      stickerAttr.Alt,
			IsAnimated: doc.MimeType == "application/x-tgsticker",
			IsVideo:    doc.MimeType == "video/webm",
			FileSize:   doc.Size,
		}
		if set, ok := stickerAttr.Stickerset.(*tg.InputStickerSetID); ok {
			sticker.SetID = set.ID
		}
		if imageAttr != nil {
			sticker.Width = imageAttr.W
			sticker.Height = imageAttr.H
		} else if videoAttr != nil {
			sticker.Width = videoAttr.W
			sticker.Height = videoAttr.H
		}
		r.sticker = sticker
		r.mediaType = minigram.MediaTypeSticker
	case videoAttr != nil:
		if videoAttr.RoundMessage {
			r.videoNote = &minigram.VideoNote{
				FileID:     doc.ID,
				AccessHash: doc.AccessHash,
				Length:     videoAttr.W,
				Duration:   secondsToDuration(videoAttr.Duration),
				FileSize:   doc.Size,
				TTLSeconds: ttl,
				IsViewOnce: isViewOnceTTL(ttl),
			}
			r.mediaType = minigram.MediaTypeVideoNote
			return
		}
		r.video = &minigram.Video{
			FileID:            doc.ID,
			AccessHash:        doc.AccessHash,
			Width:             videoAttr.W,
			Height:            videoAttr.H,
			Duration:          secondsToDuration(videoAttr.Duration),
			FileName:          fileName,
			MimeType:          doc.MimeType,
			FileSize:          doc.Size,
			SupportsStreaming: videoAttr.SupportsStreaming,
			TTLSeconds:        ttl,
			IsViewOnce:        isViewOnceTTL(ttl),
			HasSpoiler:        media.Spoiler,
		}
		r.mediaType = minigram.MediaTypeVideo
		r.spoiler = media.Spoiler
	case audioAttr != nil:
		if audioAttr.Voice {
			waveform, _ := audioAttr.GetWaveform()
			r.voice = &minigram.Voice{
				FileID:     doc.ID,
				AccessHash: doc.AccessHash,
				Duration:   time.Duration(audioAttr.Duration) * time.Second,
				MimeType:   doc.MimeType,
				FileSize:   doc.Size,
				Waveform:   waveform,
				TTLSeconds: ttl,
				IsViewOnce: isViewOnceTTL(ttl),
			}
			r.mediaType = minigram.MediaTypeVoice
			return
		}
		performer, _ := audioAttr.GetPerformer()
		title, _ := audioAttr.GetTitle()
		r.audio = &minigram.Audio{
			FileID:     doc.ID,
			AccessHash: doc.AccessHash,
			Duration:   time.Duration(audioAttr.Duration) * time.Second,
			Performer:  performer,
			Title:      title,
			FileName:   fileName,
			MimeType:   doc.MimeType,
			FileSize:   doc.Size,
		}
		r.mediaType = minigram.MediaTypeAudio
	default:
		r.document = &minigram.Document{
			FileID:     doc.ID,
			AccessHash: doc.AccessHash,
			FileName:   fileName,
			MimeType:   doc.MimeType,
			FileSize:   doc.Size,
			Date:       TimeFromUnix(doc.Date),
		}
		r.mediaType = minigram.MediaTypeDocument
	}
}

// classifyWebPage handles the preview envelope. A full page keeps its preview
// payload next to the text; an empty or still-resolving page degrades to the
// bare URL. No media variant is tagged in either case.
func classifyWebPage(media *tg.MessageMediaWebPage, msg *tg.Message, r *mediaResult) {
	switch page := media.Webpage.(type) {
	case *tg.WebPage:
		kind, _ := page.GetType()
		siteName, _ := page.GetSiteName()
		title, _ := page.GetTitle()
		description, _ := page.GetDescription()
		r.webPage = &minigram.WebPage{
			ID:          page.ID,
			URL:         page.URL,
			DisplayURL:  page.DisplayURL,
			SiteName:    siteName,
			Title:       title,
			Description: description,
			Kind:        kind,
		}
		r.webPageURL = page.URL
	case *tg.WebPageEmpty:
		r.webPageURL, _ = page.GetURL()
	default:
		if msg != nil {
			r.webPageURL = firstURL(msg.Message, msg.Entities)
		}
	}

	invert := false
	if msg != nil {
		invert = msg.InvertMedia
	}
	r.linkPreview = &minigram.LinkPreviewOptions{
		URL:              r.webPageURL,
		PreferSmallMedia: media.ForceSmallMedia,
		PreferLargeMedia: media.ForceLargeMedia,
		ShowAboveText:    invert,
		IsManual:         media.Manual,
		IsSafe:           media.Safe,
	}
}

func rawDocument(media *tg.MessageMediaDocument) (*tg.Document, bool) {
	class, ok := media.GetDocument()
	if !ok {
		return nil, false
	}
	doc, ok := class.(*tg.Document)
	return doc, ok
}

func parsePhotoEnvelope(media *tg.MessageMediaPhoto) *minigram.Photo {
	class, ok := media.GetPhoto()
	if !ok {
		return nil
	}
	raw, ok := class.(*tg.Photo)
	if !ok {
		return nil
	}

	ttl, _ := media.GetTTLSeconds()
	photo := parsePhoto(raw)
	photo.TTLSeconds = ttl
	photo.HasSpoiler = media.Spoiler
	photo.IsViewOnce = isViewOnceTTL(ttl)
	return photo
}

// parsePhoto maps a raw photo to the normalized view, taking dimensions and
// byte size from the largest available render.
func parsePhoto(raw *tg.Photo) *minigram.Photo {
	photo := &minigram.Photo{
		FileID:     raw.ID,
		AccessHash: raw.AccessHash,
		Date:       TimeFromUnix(raw.Date),
	}

	best := 0
	for _, size := range raw.Sizes {
		var w, h int
		var byteSize int64
		switch typed := size.(type) {
		case *tg.PhotoSize:
			w, h, byteSize = typed.W, typed.H, int64(typed.Size)
		case *tg.PhotoSizeProgressive:
			w, h = typed.W, typed.H
			for _, s := range typed.Sizes {
				if int64(s) > byteSize {
					byteSize = int64(s)
				}
			}
		case *tg.PhotoCachedSize:
			w, h, byteSize = typed.W, typed.H, int64(len(typed.Bytes))
		default:
			continue
		}
		if w*h >= best {
			best = w * h
			photo.Width = w
			photo.Height = h
			photo.FileSize = byteSize
		}
	}

	return photo
}

func parseGeoPoint(geo tg.GeoPointClass) *minigram.Location {
	point, ok := geo.(*tg.GeoPoint)
	if !ok {
		return nil
	}
	accuracy, _ := point.GetAccuracyRadius()
	return &minigram.Location{
		Longitude: point.Long,
		Latitude:  point.Lat,
		Accuracy:  float64(accuracy),
	}
}

func parsePoll(media *tg.MessageMediaPoll) *minigram.Poll {
	poll := &minigram.Poll{
		ID:                    media.Poll.ID,
		Question:              media.Poll.Question.Text,
		IsClosed:              media.Poll.Closed,
		IsAnonymous:           !media.Poll.PublicVoters,
		AllowsMultipleAnswers: media.Poll.MultipleChoice,
		IsQuiz:                media.Poll.Quiz,
	}
	if voters, ok := media.Results.GetTotalVoters(); ok {
		poll.TotalVoterCount = voters
	}

	for _, answer := range media.Poll.Answers {
		option := minigram.PollOption{
			Text: answer.Text.Text,
			Data: answer.Option,
		}
		for _, result := range media.Results.Results {
			if bytes.Equal(result.Option, answer.Option) {
				option.VoterCount = result.Voters
				break
			}
		}
		poll.Options = append(poll.Options, option)
	}

	return poll
}

func parseGiveaway(media *tg.MessageMediaGiveaway) *minigram.Giveaway {
	giveaway := &minigram.Giveaway{
		Quantity:           media.Quantity,
		Months:             media.Months,
		UntilDate:          TimeFromUnix(media.UntilDate),
		OnlyNewSubscribers: media.OnlyNewSubscribers,
	}
	if countries, ok := media.GetCountriesISO2(); ok {
		giveaway.Countries = countries
	}
	if prize, ok := media.GetPrizeDescription(); ok {
		giveaway.PrizeDescription = prize
	}
	for _, channelID := range media.Channels {
		giveaway.ChannelIDs = append(giveaway.ChannelIDs, ChannelChatID(channelID))
	}
	return giveaway
}

func parseGiveawayResults(media *tg.MessageMediaGiveawayResults) *minigram.GiveawayWinners {
	winners := &minigram.GiveawayWinners{
		ChannelID:          ChannelChatID(media.ChannelID),
		LaunchMessageID:    media.LaunchMsgID,
		WinnersCount:       media.WinnersCount,
		UnclaimedCount:     media.UnclaimedCount,
		WinnerIDs:          media.Winners,
		Months:             media.Months,
		UntilDate:          TimeFromUnix(media.UntilDate),
		OnlyNewSubscribers: media.OnlyNewSubscribers,
	}
	if prize, ok := media.GetPrizeDescription(); ok {
		winners.PrizeDescription = prize
	}
	return winners
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// isViewOnceTTL reports whether a self-destruct period encodes view-once.
func isViewOnceTTL(ttl int) bool {
	return ttl == math.MaxInt32
}
