package tasks

// User-facing messages.
const (
	MsgProgressFailed  = "⚠️ Không thể tải tiến trình."
	MsgInvalidRange    = "Vui lòng chọn khoảng chương hợp lệ!"
	MsgTranslated      = "✅ Đã dịch thêm %d chương!"
	MsgTranslateFailed = "❌ Lỗi khi dịch."
	MsgNoTranslations  = "Chưa có chương nào được dịch!"
	MsgExportFailed    = "Lỗi khi xuất EPUB: %v"
	MsgLocalExportFail = "Lỗi khi xuất tệp: %v"
	MsgUploadFailed    = "Lỗi khi tải nội dung: %v"
	MsgUploaded        = "Đã tải %d chương."
	MsgIdentityFailed  = "Không thể lưu định danh: %v"
	MsgSavedEpub       = "Đã lưu EPUB: %s"
	MsgOpenedEpub      = "Đã mở EPUB: %s"
	MsgSavedFile       = "Đã lưu: %s"

	TitlePrompt   = "Nhập tên truyện:"
	DefaultTitle  = "Truyện đã dịch"
	DefaultAuthor = "Dịch bởi Gemini"
	DefaultPrompt = "Dịch tự nhiên sang tiếng Việt"
)
