package blogfront

// User-facing messages.
const (
	msgUnreachable    = "서버와 통신할 수 없습니다."
	msgNoPosts        = "게시물이 없습니다."
	msgPostsFailed    = "게시물을 불러오는 데 실패했습니다."
	msgDetailFailed   = "게시물을 불러올 수 없습니다."
	msgEditLoadFailed = "게시물을 불러오지 못했습니다."
	msgLoginRequired  = "로그인이 필요합니다."
	msgAuthorOnly     = "작성자만 수정할 수 있습니다."
	msgPickCategory   = "카테고리를 선택하세요."
	msgTitleContent   = "제목/내용을 입력하세요."
	msgSaveFailed     = "저장 실패"
	msgDeleted        = "삭제되었습니다."
	msgDeleteFailed   = "삭제 실패"
	msgLoginFailed    = "로그인 실패"
	msgTooManyLogins  = "로그인 시도가 너무 많습니다. 잠시 후 다시 시도하세요."
	msgSignupFailed   = "회원가입 실패"
	msgSignedUp       = "회원가입 성공! 로그인 페이지로 이동합니다."
	msgLoggedOut      = "로그아웃 되었습니다."
	msgServerError    = "요청을 처리하지 못했습니다."
	msgBadRequest     = "잘못된 요청입니다."
	msgForbidden      = "요청이 만료되었습니다. 페이지를 새로고침하세요."
	msgNoEndpoint     = "요청한 주소를 찾을 수 없습니다."

	headingCreate = "글 작성"
	headingEdit   = "글 수정"
)
