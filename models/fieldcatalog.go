package models

// FieldDef describes one selectable athlete attribute for registration forms.
type FieldDef struct {
	Key   string `json:"chave"`
	Label string `json:"label"`
	Group string `json:"grupo"`
}

// AthleteFieldCatalog is the fixed, ordered catalog of athlete attributes a
// form may include. Order here is the canonical display order.
var AthleteFieldCatalog = []FieldDef{
	{"nome", "Nome completo", "Dados do Atleta"},
	{"sexo", "Sexo", "Dados do Atleta"},
	{"id_academia", "Academia", "Vínculos"},
	{"nome_pai", "Nome do Pai", "Filiação"},
	{"nome_mae", "Nome da Mãe", "Filiação"},
	{"responsavel_grau_parentesco", "Grau de Parentesco", "Responsável"},
	{"responsavel_nome", "Responsável (menor)", "Responsável"},
	{"responsavel_parentesco", "Tipo de parentesco", "Responsável"},
	{"graduacao_id", "Faixa / Grau", "Registro Esportivo"},
	{"peso", "Peso (kg)", "Registro Esportivo"},
	{"categoria", "Categoria", "Registro Esportivo"},
	{"zempo", "Registro Zempo nº", "Registro Esportivo"},
	{"data_cadastro_zempo", "Data de Cadastro Zempo", "Registro Esportivo"},
	{"data_nascimento", "Data de nascimento", "Identificação"},
	{"ultimo_exame_faixa", "Data da Última Graduação", "Identificação"},
	{"nacionalidade", "Nacionalidade", "Identificação"},
	{"cpf", "CPF", "Identificação"},
	{"rg", "RG", "Identificação"},
	{"orgao_emissor", "Órgão Emissor / UF", "Identificação"},
	{"rg_data_emissao", "Data de Emissão RG", "Identificação"},
	{"cep", "CEP", "Endereço"},
	{"endereco", "Rua / Logradouro", "Endereço"},
	{"numero", "Nº", "Endereço"},
	{"bairro", "Bairro", "Endereço"},
	{"cidade", "Cidade", "Endereço"},
	{"estado", "Estado/UF", "Endereço"},
	{"complemento", "Complemento", "Endereço"},
	{"email", "E-mail", "Contato"},
	{"telefone_celular", "Telefone Celular", "Contato"},
	{"telefone_residencial", "Telefone Residencial", "Contato"},
	{"telefone_comercial", "Telefone Comercial", "Contato"},
	{"telefone_outro", "Outro Telefone", "Contato"},
	{"TurmaID", "Turma", "Turma e Modalidades"},
	{"professor_id", "Professor", "Turma e Modalidades"},
	{"aluno_modalidade_ids", "Modalidades", "Turma e Modalidades"},
	{"responsavel_financeiro_nome", "Nome do Responsável Financeiro", "Responsável Financeiro"},
	{"responsavel_financeiro_cpf", "CPF do Responsável Financeiro", "Responsável Financeiro"},
	{"observacoes", "Observações", "Outros"},
	{"foto", "Foto", "Outros"},
}

var athleteFieldIndex = func() map[string]FieldDef {
	idx := make(map[string]FieldDef, len(AthleteFieldCatalog))
	for _, f := range AthleteFieldCatalog {
		idx[f.Key] = f
	}
	return idx
}()

// IsCatalogField reports whether key belongs to the athlete field catalog.
func IsCatalogField(key string) bool {
	_, ok := athleteFieldIndex[key]
	return ok
}

// FieldLabel returns the display label for a catalog key, or the key itself
// when it is not part of the catalog.
func FieldLabel(key string) string {
	if f, ok := athleteFieldIndex[key]; ok {
		return f.Label
	}
	return key
}

// FieldGroups returns the catalog grouped by section, preserving catalog order
// both for the groups and for the fields inside each group.
func FieldGroups() ([]string, map[string][]FieldDef) {
	order := make([]string, 0, 8)
	groups := make(map[string][]FieldDef)
	for _, f := range AthleteFieldCatalog {
		if _, ok := groups[f.Group]; !ok {
			order = append(order, f.Group)
		}
		groups[f.Group] = append(groups[f.Group], f)
	}
	return order, groups
}

// FormToAthleteColumn maps form field keys to columns of the alunos table for
// the registration write-back. Keys absent here are never written back.
var FormToAthleteColumn = map[string]string{
	"nome":                        "nome",
	"sexo":                        "sexo",
	"nome_pai":                    "nome_pai",
	"nome_mae":                    "nome_mae",
	"peso":                        "peso",
	"cpf":                         "cpf",
	"rg":                          "rg",
	"nacionalidade":               "nacionalidade",
	"orgao_emissor":               "orgao_emissor",
	"rg_data_emissao":             "rg_data_emissao",
	"cep":                         "cep",
	"endereco":                    "rua",
	"numero":                      "numero",
	"bairro":                      "bairro",
	"cidade":                      "cidade",
	"estado":                      "estado",
	"complemento":                 "complemento",
	"email":                       "email",
	"observacoes":                 "observacoes",
	"zempo":                       "zempo",
	"responsavel_nome":            "responsavel_nome",
	"responsavel_parentesco":      "responsavel_parentesco",
	"responsavel_grau_parentesco": "responsavel_grau_parentesco",
	"responsavel_financeiro_nome": "responsavel_financeiro_nome",
	"responsavel_financeiro_cpf":  "responsavel_financeiro_cpf",
	"telefone_celular":            "tel_celular",
	"telefone_residencial":        "tel_residencial",
	"telefone_comercial":          "tel_comercial",
	"telefone_outro":              "tel_outro",
	"ultimo_exame_faixa":          "ultimo_exame_faixa",
	"data_cadastro_zempo":         "data_cadastro_zempo",
	"graduacao_id":                "graduacao_id",
	"TurmaID":                     "TurmaID",
	"data_nascimento":             "data_nascimento",
}

// WriteBackExcludedKeys are form keys that must never touch the athlete record.
var WriteBackExcludedKeys = map[string]bool{
	"id_academia":          true,
	"aluno_modalidade_ids": true,
	"foto":                 true,
}

// IntegerAthleteColumns and FloatAthleteColumns list the typed columns of the
// write-back; unparseable values are skipped instead of written.
var (
	IntegerAthleteColumns = map[string]bool{"graduacao_id": true, "TurmaID": true}
	FloatAthleteColumns   = map[string]bool{"peso": true}
	DateAthleteColumns    = map[string]bool{
		"data_nascimento":     true,
		"ultimo_exame_faixa":  true,
		"rg_data_emissao":     true,
		"data_cadastro_zempo": true,
	}
)

// DateFieldKeys are the form keys rendered as DD/MM/YYYY on export.
var DateFieldKeys = map[string]bool{
	"data_nascimento":     true,
	"ultimo_exame_faixa":  true,
	"rg_data_emissao":     true,
	"data_cadastro_zempo": true,
}
