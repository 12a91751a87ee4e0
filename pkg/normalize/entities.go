package normalize

import (
	"unicode/utf16"

	"github.com/gotd/td/tg"

	"minigram/pkg/minigram"
)

// mapEntities converts raw formatting spans to the normalized form. Unknown
// span kinds are dropped; offsets stay in UTF-16 code units.
func mapEntities(entities []tg.MessageEntityClass) []minigram.MessageEntity {
	if len(entities) == 0 {
		return nil
	}

	out := make([]minigram.MessageEntity, 0, len(entities))
	for _, entity := range entities {
		var mapped minigram.MessageEntity
		switch typed := entity.(type) {
		case *tg.MessageEntityMention:
			mapped = minigram.MessageEntity{Type: "mention", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityHashtag:
			mapped = minigram.MessageEntity{Type: "hashtag", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityCashtag:
			mapped = minigram.MessageEntity{Type: "cashtag", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityBotCommand:
			mapped = minigram.MessageEntity{Type: "bot_command", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityURL:
			mapped = minigram.MessageEntity{Type: "url", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityEmail:
			mapped = minigram.MessageEntity{Type: "email", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityPhone:
			mapped = minigram.MessageEntity{Type: "phone_number", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityBold:
			mapped = minigram.MessageEntity{Type: "bold", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityItalic:
			mapped = minigram.MessageEntity{Type: "italic", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityUnderline:
			mapped = minigram.MessageEntity{Type: "underline", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityStrike:
			mapped = minigram.MessageEntity{Type: "strikethrough", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntitySpoiler:
			mapped = minigram.MessageEntity{Type: "spoiler", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityCode:
			mapped = minigram.MessageEntity{Type: "code", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityPre:
			mapped = minigram.MessageEntity{Type: "pre", Offset: typed.Offset, Length: typed.Length, Language: typed.Language}
		case *tg.MessageEntityBlockquote:
			mapped = minigram.MessageEntity{Type: "blockquote", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityBankCard:
			mapped = minigram.MessageEntity{Type: "bank_card", Offset: typed.Offset, Length: typed.Length}
		case *tg.MessageEntityTextURL:
			mapped = minigram.MessageEntity{Type: "text_link", Offset: typed.Offset, Length: typed.Length, URL: typed.URL}
		case *tg.MessageEntityMentionName:
			mapped = minigram.MessageEntity{Type: "text_mention", Offset: typed.Offset, Length: typed.Length, UserID: typed.UserID}
		case *tg.MessageEntityCustomEmoji:
			mapped = minigram.MessageEntity{Type: "custom_emoji", Offset: typed.Offset, Length: typed.Length, CustomEmojiID: typed.DocumentID}
		default:
			continue
		}
		out = append(out, mapped)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// firstURL returns the first link carried by the message text, preferring an
// explicit text-link target over a plain URL span.
func firstURL(text string, entities []tg.MessageEntityClass) string {
	for _, entity := range entities {
		switch typed := entity.(type) {
		case *tg.MessageEntityTextURL:
			return typed.URL
		case *tg.MessageEntityURL:
			return utf16Slice(text, typed.Offset, typed.Length)
		}
	}
	return ""
}

// utf16Slice extracts a substring addressed in UTF-16 code units, the offset
// base the wire protocol uses for entity spans.
func utf16Slice(text string, offset, length int) string {
	if offset < 0 || length <= 0 {
		return ""
	}

	units := utf16.Encode([]rune(text))
	if offset >= len(units) {
		return ""
	}
	end := offset + length
	if end > len(units) {
		end = len(units)
	}

	return string(utf16.Decode(units[offset:end]))
}
