// Package chat answers questions about the archive. A remote model (Gemini or
// Anthropic) is used when configured; otherwise a keyword matcher answers
// from a fixed rule set.
package chat

import "context"

// Responder turns a question into an answer.
type Responder interface {
	Respond(ctx context.Context, query string) (string, error)
	// Name identifies the responder in stored messages and cache keys.
	Name() string
}

// Responder names.
const (
	NameGemini    = "gemini"
	NameAnthropic = "anthropic"
	NameLocal     = "local"
)

// Apology is sent in place of an answer when the responder fails.
const Apology = "Xin lỗi, đã có lỗi xảy ra khi xử lý câu hỏi của bạn. Vui lòng thử lại sau."

// SystemPrompt frames every remote request.
const SystemPrompt = `Bạn là một trợ lý AI chuyên về lịch sử Việt Nam Dân Chủ Cộng Hòa (1955-1975).
Hãy trả lời các câu hỏi một cách chính xác, khách quan và có cơ sở lịch sử.
Tập trung vào các sự kiện, nhân vật, văn hóa và đời sống xã hội trong thời kỳ này.
Trả lời bằng tiếng Việt, ngắn gọn (2-4 câu) nhưng đầy đủ thông tin.
Nếu câu hỏi không liên quan đến Việt Nam Dân Chủ Cộng Hòa, hãy lịch sự hướng người dùng về chủ đề này.`

const (
	welcomeRemote = "Xin chào! Tôi là trợ lý AI của ứng dụng Di Sản Việt Nam Dân Chủ Cộng Hòa. Tôi có thể giúp bạn tìm hiểu về lịch sử, văn hóa, và các sự kiện quan trọng của Việt Nam Dân Chủ Cộng Hòa (1955-1975). Bạn muốn hỏi gì?"
	welcomeLocal  = "Xin chào! Tôi đang chạy ở chế độ demo. Để sử dụng AI thật, hãy đặt biến môi trường GEMINI_API_KEY hoặc ANTHROPIC_API_KEY rồi khởi động lại máy chủ. Lấy Gemini API key miễn phí tại: https://aistudio.google.com/app/apikey"
)

// WelcomeMessage returns the greeting that opens a conversation.
func WelcomeMessage(remote bool) string {
	if remote {
		return welcomeRemote
	}
	return welcomeLocal
}

var suggestions = []string{
	"Ngô Đình Diệm là ai?",
	"Hiệp định Geneva 1954 là gì?",
	"Tết Mậu Thân 1968",
	"Văn hóa Sài Gòn",
	"Giáo dục thời Việt Nam Dân Chủ Cộng Hoà",
}

// SuggestedQuestions returns the starter questions shown under an empty chat.
func SuggestedQuestions() []string {
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}

// IsRemote reports whether r calls out to a hosted model.
func IsRemote(r Responder) bool {
	return r != nil && r.Name() != NameLocal
}
