package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodePotionDepleted:        "A poção está esgotada",
		CodePotionUnusable:        "A poção agora faz parte de algo maior",
		CodeEffectConsumed:        "O efeito {{.Effect}} está esgotado",
		CodeEffectUnknown:         "A poção não tem o efeito {{.Effect}}",
		CodeIncompatibleEffects:   "Efeitos diferentes na poção da direita: {{.Effects}}",
		CodeInvalidSplit:          "A poção não pode ser dividida em {{.Parts}} partes",
		CodeUnsupportedComparison: "A comparação {{.Operator}} não é suportada para poções",
		CodePotionMissing:         "Uma poção é obrigatória",
		CodeTargetMissing:         "Um alvo é obrigatório",
		CodeTargetActive:          "O alvo {{.Target}} ainda tem aplicações ativas",
		CodeSubjectNotFound:       "O sujeito {{.Subject}} não foi encontrado",
		CodeSubjectDuplicate:      "O sujeito {{.Subject}} já existe",
		CodeSubjectInvalidID:      "O id do sujeito não pode ser vazio",
		CodeSimClosed:             "A simulação já foi encerrada",
	},
}
