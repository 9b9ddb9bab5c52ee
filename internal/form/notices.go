package form

import "puter4image-web/internal/domain"

// maxPendingNotices は描画されずに溜まる通知の上限です。
const maxPendingNotices = 5

var (
	noticePromptMissing = domain.Notice{
		Level:       domain.NoticeInfo,
		Title:       "Prompt faltando",
		Description: "Digite um prompt para começar.",
	}
	noticeUnavailable = domain.Notice{
		Level:       domain.NoticeError,
		Title:       "SDK indisponível",
		Description: "Recarregue a página para tentar novamente.",
	}
	noticeSucceeded = domain.Notice{
		Level:       domain.NoticeSuccess,
		Title:       "Imagem pronta!",
		Description: "O gerador retornou uma nova imagem.",
	}
	noticeFailed = domain.Notice{
		Level:       domain.NoticeError,
		Title:       "Erro",
		Description: "Não foi possível gerar a imagem. Veja os detalhes abaixo.",
	}
)

const (
	msgPromptRequired = "O prompt é obrigatório."
	msgUnavailable    = "Não foi possível carregar o SDK de imagens."
)
