package i18n

var ptBR = map[string]string{
	"success":                          "sucesso",
	"notice.enrolled":                  "Você agora participa do programa de fidelidade desta loja",
	"notice.already_enrolled":          "Você já participa do programa de fidelidade desta loja",
	"notice.logged_out":                "Sessão encerrada",
	"error.bad_request":                "Requisição inválida",
	"error.unauthorized":               "Não autenticado",
	"error.forbidden":                  "Acesso negado",
	"error.token_invalid":              "Sessão inválida ou expirada",
	"error.token_revoked":              "Sessão encerrada, faça login novamente",
	"error.not_found":                  "Recurso não encontrado",
	"error.internal":                   "Erro interno, tente novamente",
	"error.too_many_requests":          "Muitas requisições, aguarde",
	"error.login_rate_limited":         "Muitas tentativas de login, tente novamente mais tarde",
	"error.email_invalid":              "E-mail inválido",
	"error.invalid_credentials":        "E-mail ou senha incorretos",
	"error.password_invalid":           "Senha atual incorreta",
	"error.password_mismatch":          "As senhas não coincidem",
	"error.password_weak":              "Senha fraca",
	"error.password_min_length":        "A senha deve ter pelo menos %d caracteres",
	"error.password_max_length":        "A senha deve ter no máximo %d bytes",
	"error.password_same_as_email":     "A senha não pode ser igual ao e-mail",
	"error.password_require_upper":     "A senha deve conter uma letra maiúscula",
	"error.password_require_lower":     "A senha deve conter uma letra minúscula",
	"error.password_require_number":    "A senha deve conter um número",
	"error.password_require_special":   "A senha deve conter um caractere especial",
	"error.email_exists":               "E-mail já cadastrado",
	"error.role_mismatch":              "Esta conta não tem acesso a este portal",
	"error.role_invalid":               "Perfil inválido",
	"error.user_disabled":              "Conta desativada",
	"error.user_status_invalid":        "Status de conta inválido",
	"error.profile_name_required":      "Informe o nome",
	"error.merchant_profile_missing":   "Cadastro de lojista incompleto",
	"error.merchant_not_found":         "Loja não encontrada",
	"error.merchant_inactive":          "Loja desativada",
	"error.store_name_required":        "Informe o nome da loja",
	"error.merchant_field_invalid":     "Dados da loja inválidos",
	"error.offer_invalid":              "Dados da oferta inválidos",
	"error.offer_not_found":            "Oferta não encontrada",
	"error.offer_inactive":             "Oferta inativa",
	"error.offer_expired":              "Oferta expirada",
	"error.offer_title_required":       "Informe o título",
	"error.offer_title_too_long":       "Título muito longo",
	"error.offer_description_required": "Informe a descrição",
	"error.offer_description_too_long": "Descrição muito longa",
	"error.offer_price_required":       "Informe o valor total",
	"error.offer_price_invalid":        "Valor total inválido",
	"error.offer_percentage_invalid":   "O percentual em pontos deve estar entre 1 e 99",
	"error.offer_valid_until_required": "Informe a validade",
	"error.offer_valid_until_invalid":  "Data de validade inválida",
	"error.not_enrolled":               "Cliente não participa desta loja",
	"error.points_amount_invalid":      "Quantidade de pontos inválida",
	"error.insufficient_points":        "Pontos insuficientes",
	"error.customer_not_found":         "Cliente não encontrado",
	"error.customer_ref_invalid":       "Informe o ID ou e-mail do cliente",
	"error.enrollment_failed":          "Não foi possível participar da loja",
	"error.points_update_failed":       "Não foi possível atualizar os pontos",
	"error.product_invalid":            "Dados do produto inválidos",
	"error.product_category_invalid":   "Categoria inválida",
	"error.product_name_invalid":       "Nome do produto inválido",
	"error.product_price_invalid":      "Preço inválido",
	"error.report_type_invalid":        "Tipo de relatório inválido",
	"error.report_date_invalid":        "Período inválido",
	"error.report_not_found":           "Relatório não encontrado",
	"error.report_not_ready":           "Relatório ainda não está pronto",
	"error.queue_unavailable":          "Fila indisponível, tente novamente",
	"error.upload_too_large":           "Arquivo muito grande",
	"error.upload_type_denied":         "Tipo de arquivo não permitido",
	"error.upload_failed":              "Falha no envio do arquivo",
	"error.stream_unavailable":         "Atualização em tempo real indisponível",
}

var enUS = map[string]string{
	"success":                          "success",
	"notice.enrolled":                  "You joined this store's loyalty program",
	"notice.already_enrolled":          "You are already enrolled in this store's loyalty program",
	"notice.logged_out":                "Signed out",
	"error.bad_request":                "Invalid request",
	"error.unauthorized":               "Not authenticated",
	"error.forbidden":                  "Access denied",
	"error.token_invalid":              "Invalid or expired session",
	"error.token_revoked":              "Session ended, please sign in again",
	"error.not_found":                  "Resource not found",
	"error.internal":                   "Internal error, please retry",
	"error.too_many_requests":          "Too many requests, please wait",
	"error.login_rate_limited":         "Too many login attempts, try again later",
	"error.email_invalid":              "Invalid email",
	"error.invalid_credentials":        "Wrong email or password",
	"error.password_invalid":           "Current password is wrong",
	"error.password_mismatch":          "Passwords do not match",
	"error.password_weak":              "Weak password",
	"error.password_min_length":        "Password must be at least %d characters",
	"error.password_max_length":        "Password must be at most %d bytes",
	"error.password_same_as_email":     "Password must differ from the email",
	"error.password_require_upper":     "Password must contain an uppercase letter",
	"error.password_require_lower":     "Password must contain a lowercase letter",
	"error.password_require_number":    "Password must contain a digit",
	"error.password_require_special":   "Password must contain a special character",
	"error.email_exists":               "Email already registered",
	"error.role_mismatch":              "This account cannot use this portal",
	"error.role_invalid":               "Invalid role",
	"error.user_disabled":              "Account disabled",
	"error.user_status_invalid":        "Invalid account status",
	"error.profile_name_required":      "Name is required",
	"error.merchant_profile_missing":   "Merchant registration incomplete",
	"error.merchant_not_found":         "Store not found",
	"error.merchant_inactive":          "Store disabled",
	"error.store_name_required":        "Store name is required",
	"error.merchant_field_invalid":     "Invalid store data",
	"error.offer_invalid":              "Invalid offer data",
	"error.offer_not_found":            "Offer not found",
	"error.offer_inactive":             "Offer inactive",
	"error.offer_expired":              "Offer expired",
	"error.offer_title_required":       "Title is required",
	"error.offer_title_too_long":       "Title too long",
	"error.offer_description_required": "Description is required",
	"error.offer_description_too_long": "Description too long",
	"error.offer_price_required":       "Total price is required",
	"error.offer_price_invalid":        "Invalid total price",
	"error.offer_percentage_invalid":   "Points percentage must be between 1 and 99",
	"error.offer_valid_until_required": "Expiry date is required",
	"error.offer_valid_until_invalid":  "Invalid expiry date",
	"error.not_enrolled":               "Customer is not enrolled at this store",
	"error.points_amount_invalid":      "Invalid points amount",
	"error.insufficient_points":        "Not enough points",
	"error.customer_not_found":         "Customer not found",
	"error.customer_ref_invalid":       "Provide the customer id or email",
	"error.enrollment_failed":          "Could not enroll at this store",
	"error.points_update_failed":       "Could not update points",
	"error.product_invalid":            "Invalid product data",
	"error.product_category_invalid":   "Invalid category",
	"error.product_name_invalid":       "Invalid product name",
	"error.product_price_invalid":      "Invalid price",
	"error.report_type_invalid":        "Invalid report type",
	"error.report_date_invalid":        "Invalid period",
	"error.report_not_found":           "Report not found",
	"error.report_not_ready":           "Report is not ready yet",
	"error.queue_unavailable":          "Queue unavailable, please retry",
	"error.upload_too_large":           "File too large",
	"error.upload_type_denied":         "File type not allowed",
	"error.upload_failed":              "Upload failed",
	"error.stream_unavailable":         "Live updates unavailable",
}
