package telegram

// Update входящее событие Bot API (сообщение или нажатие inline-кнопки)
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// User отправитель
type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username,omitempty"`
}

// Chat чат, в котором пришло сообщение
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Message текстовое сообщение
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// CallbackQuery нажатие inline-кнопки
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Button кнопка inline-клавиатуры: либо callback data, либо ссылка
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Keyboard строки кнопок
type Keyboard [][]Button

// ParseModeMarkdown режим разметки для сообщений со счётом
const ParseModeMarkdown = "Markdown"

// Reply исходящий текст с необязательной клавиатурой
type Reply struct {
	Text      string
	Keyboard  Keyboard
	ParseMode string
}

type inlineKeyboardMarkup struct {
	InlineKeyboard Keyboard `json:"inline_keyboard"`
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}
