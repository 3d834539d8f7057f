package utils

// Bảng thông điệp trả về client. Chi tiết lỗi nội bộ chỉ ghi log, không nằm ở đây.

const (
	MsgRegisterSuccess        = "auth.register_success"
	MsgLoginSuccess           = "auth.login_success"
	MsgUsernameTaken          = "auth.username_taken"
	MsgCredentialsRequired    = "auth.credentials_required"
	MsgUsernameTooLong        = "auth.username_too_long"
	MsgPasswordTooLong        = "auth.password_too_long"
	MsgInvalidCredentials     = "auth.invalid_credentials"
	MsgTokenMissing           = "auth.token_missing"
	MsgTokenInvalid           = "auth.token_invalid"
	MsgUserNotFound           = "user.not_found"
	MsgUserStale              = "user.stale"
	MsgQuestionnaireInvalid   = "questionnaire.invalid"
	MsgTitleTooLong           = "questionnaire.title_too_long"
	MsgQuestionnaireCreated   = "questionnaire.created"
	MsgQuestionnaireDeleted   = "questionnaire.deleted"
	MsgQuestionnaireNotFound  = "questionnaire.not_found"
	MsgSubmissionCountInvalid = "submission.count_mismatch"
	MsgSubmissionQuestionBad  = "submission.question_invalid"
	MsgSubmissionCreated      = "submission.created"
	MsgAnonymous              = "submission.anonymous"
	MsgExportFormatInvalid    = "export.format_invalid"
	MsgInvalidID              = "request.invalid_id"
	MsgInvalidBody            = "request.invalid_body"
	MsgTooManyRequests        = "request.too_many"
	MsgInternalError          = "internal.error"
)

var translations = map[string]map[string]string{
	"en": {
		MsgRegisterSuccess:        "Registration successful",
		MsgLoginSuccess:           "Login successful",
		MsgUsernameTaken:          "Username already exists",
		MsgCredentialsRequired:    "Username and password are required",
		MsgUsernameTooLong:        "Username must be at most 255 characters",
		MsgPasswordTooLong:        "Password must be at most 72 bytes",
		MsgInvalidCredentials:     "Incorrect username or password",
		MsgTokenMissing:           "Authentication token not provided",
		MsgTokenInvalid:           "Invalid authentication token",
		MsgUserNotFound:           "User not found",
		MsgUserStale:              "User no longer exists, please log in again",
		MsgQuestionnaireInvalid:   "Invalid questionnaire data",
		MsgTitleTooLong:           "Title must be at most 255 characters",
		MsgQuestionnaireCreated:   "Questionnaire created",
		MsgQuestionnaireDeleted:   "Questionnaire deleted",
		MsgQuestionnaireNotFound:  "Questionnaire not found",
		MsgSubmissionCountInvalid: "Number of answers does not match the questionnaire",
		MsgSubmissionQuestionBad:  "Answers must reference each question of the questionnaire exactly once",
		MsgSubmissionCreated:      "Answers submitted",
		MsgAnonymous:              "Anonymous",
		MsgExportFormatInvalid:    "Unsupported export format",
		MsgInvalidID:              "Invalid ID",
		MsgInvalidBody:            "Invalid request body",
		MsgTooManyRequests:        "Too many requests, please try again later",
		MsgInternalError:          "Something went wrong, please try again later",
	},
	"zh": {
		MsgRegisterSuccess:        "注册成功",
		MsgLoginSuccess:           "登录成功",
		MsgUsernameTaken:          "用户名已存在",
		MsgCredentialsRequired:    "用户名和密码不能为空",
		MsgUsernameTooLong:        "用户名不能超过255个字符",
		MsgPasswordTooLong:        "密码不能超过72字节",
		MsgInvalidCredentials:     "用户名或密码错误",
		MsgTokenMissing:           "未提供认证令牌",
		MsgTokenInvalid:           "无效的认证令牌",
		MsgUserNotFound:           "用户不存在",
		MsgUserStale:              "用户不存在，请重新登录",
		MsgQuestionnaireInvalid:   "无效的问卷数据",
		MsgTitleTooLong:           "标题不能超过255个字符",
		MsgQuestionnaireCreated:   "问卷创建成功",
		MsgQuestionnaireDeleted:   "问卷删除成功",
		MsgQuestionnaireNotFound:  "问卷不存在",
		MsgSubmissionCountInvalid: "答案数量不匹配",
		MsgSubmissionQuestionBad:  "答案必须与问卷中的每个问题一一对应",
		MsgSubmissionCreated:      "答案提交成功",
		MsgAnonymous:              "匿名用户",
		MsgExportFormatInvalid:    "不支持的导出格式",
		MsgInvalidID:              "无效的ID",
		MsgInvalidBody:            "无效的请求数据",
		MsgTooManyRequests:        "请求过于频繁，请稍后再试",
		MsgInternalError:          "服务器错误，请稍后再试",
	},
	"vi": {
		MsgRegisterSuccess:        "Đăng ký thành công",
		MsgLoginSuccess:           "Đăng nhập thành công",
		MsgUsernameTaken:          "Tên đăng nhập đã tồn tại",
		MsgCredentialsRequired:    "Cần nhập tên đăng nhập và mật khẩu",
		MsgUsernameTooLong:        "Tên đăng nhập tối đa 255 ký tự",
		MsgPasswordTooLong:        "Mật khẩu tối đa 72 byte",
		MsgInvalidCredentials:     "Sai tên đăng nhập hoặc mật khẩu",
		MsgTokenMissing:           "Thiếu token xác thực",
		MsgTokenInvalid:           "Token không hợp lệ",
		MsgUserNotFound:           "Người dùng không tồn tại",
		MsgUserStale:              "Người dùng không còn tồn tại, vui lòng đăng nhập lại",
		MsgQuestionnaireInvalid:   "Dữ liệu khảo sát không hợp lệ",
		MsgTitleTooLong:           "Tiêu đề tối đa 255 ký tự",
		MsgQuestionnaireCreated:   "Tạo khảo sát thành công",
		MsgQuestionnaireDeleted:   "Xoá khảo sát thành công",
		MsgQuestionnaireNotFound:  "Khảo sát không tồn tại",
		MsgSubmissionCountInvalid: "Số câu trả lời không khớp với khảo sát",
		MsgSubmissionQuestionBad:  "Mỗi câu hỏi của khảo sát phải được trả lời đúng một lần",
		MsgSubmissionCreated:      "Gửi khảo sát thành công",
		MsgAnonymous:              "Ẩn danh",
		MsgExportFormatInvalid:    "Định dạng xuất không được hỗ trợ",
		MsgInvalidID:              "ID không hợp lệ",
		MsgInvalidBody:            "Payload không hợp lệ",
		MsgTooManyRequests:        "Quá nhiều yêu cầu, vui lòng thử lại sau ít phút",
		MsgInternalError:          "Lỗi hệ thống, vui lòng thử lại sau",
	},
}

// SupportedLocales liệt kê theo thứ tự ưu tiên; phần tử đầu là fallback cuối cùng.
var SupportedLocales = []string{"en", "zh", "vi"}

// T trả về thông điệp theo locale; không có thì dùng tiếng Anh, cuối cùng trả về key.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}

func IsSupportedLocale(locale string) bool {
	_, ok := translations[locale]
	return ok
}
