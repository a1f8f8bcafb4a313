// Package content holds the static educational catalog served to the app.
package content

type Lesson struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Category    string `json:"category"`
}

type StudyTechnique struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	Effectiveness int    `json:"effectiveness"`
}

type Psychologist struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Specialty  string  `json:"specialty"`
	Experience string  `json:"experience"`
	Rating     float64 `json:"rating"`
	Available  bool    `json:"available"`
	Bio        string  `json:"bio"`
}

var lessons = []Lesson{
	{1, "anxiety", "Entendendo a Ansiedade", "Como identificar e lidar com sintomas de ansiedade", "5 min", "Fundamentos"},
	{2, "breathing", "Técnicas de Respiração", "Aprenda 3 técnicas comprovadas para acalmar a mente", "8 min", "Prática"},
	{3, "academic-stress", "Gestão do Estresse Acadêmico", "Estratégias para lidar com pressão e expectativas", "10 min", "Acadêmico"},
	{4, "mindfulness", "Mindfulness para Estudantes", "Práticas de atenção plena adaptadas para o estudo", "7 min", "Mindfulness"},
	{5, "sleep", "Sono e Desempenho", "A importância do sono para memória e aprendizado", "6 min", "Saúde"},
	{6, "comparison", "Superando a Comparação", "Como sair da armadilha de se comparar com os outros", "6 min", "Fundamentos"},
	{7, "pressure", "Lidando com Pressão", "Perfeccionismo saudável vs. prejudicial", "8 min", "Acadêmico"},
}

var studyTechniques = []StudyTechnique{
	{1, "Técnica Pomodoro", "25 minutos de foco + 5 minutos de pausa", "Iniciante", 95},
	{2, "Método Feynman", "Ensine para aprender: explique conceitos em linguagem simples", "Intermediário", 90},
	{3, "Repetição Espaçada", "Revise conteúdo em intervalos crescentes", "Avançado", 88},
	{4, "Mapas Mentais", "Organize informações visualmente", "Iniciante", 85},
	{5, "Técnica Cornell", "Sistema estruturado para tomar notas eficazes", "Intermediário", 82},
}

var psychologists = []Psychologist{
	{1, "Dra. Ana Silva", "Ansiedade e Estresse Acadêmico", "8 anos", 4.9, true, "Especialista em terapia cognitivo-comportamental para estudantes."},
	{2, "Dr. Carlos Santos", "Desenvolvimento Pessoal", "12 anos", 4.8, false, "Foco em autoestima e motivação para jovens."},
	{3, "Dra. Maria Costa", "Mindfulness e Bem-estar", "6 anos", 4.9, true, "Praticante de mindfulness e técnicas de relaxamento."},
}

// Lessons returns a copy of the lesson catalog.
func Lessons() []Lesson {
	return append([]Lesson(nil), lessons...)
}

func StudyTechniques() []StudyTechnique {
	return append([]StudyTechnique(nil), studyTechniques...)
}

func Psychologists() []Psychologist {
	return append([]Psychologist(nil), psychologists...)
}

// LessonBySlug looks a lesson up by its stable slug.
func LessonBySlug(slug string) (Lesson, bool) {
	for _, l := range lessons {
		if l.Slug == slug {
			return l, true
		}
	}
	return Lesson{}, false
}
