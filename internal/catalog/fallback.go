package catalog

import "github.com/abhisek/mathlingo/internal/problemgen"

// Fallback returns the built-in content used when no feed could be loaded.
// Each call returns fresh values.
func Fallback() Content {
	mc := problemgen.TypeMultipleChoice
	fi := problemgen.TypeFreeInput
	easy, medium, hard := problemgen.DifficultyEasy, problemgen.DifficultyMedium, problemgen.DifficultyHard

	return Content{
		Questions: []*problemgen.Question{
			{
				ID:         "q1_1",
				ChapterID:  "chapter_1",
				Type:       mc,
				Difficulty: easy,
				Text:       "Calculez: 3² + 4² = ?",
				Answers: []problemgen.Answer{
					{Text: "25", IsCorrect: true},
					{Text: "49"},
				},
				Explanation: "3² = 9 et 4² = 16, donc 9 + 16 = 25",
				Tags:        []string{"calcul", "puissances"},
			},
			{
				ID:            "q3_1",
				ChapterID:     "chapter_3",
				Type:          fi,
				Difficulty:    easy,
				Text:          "Combien de côtés possède un hexagone ?",
				CorrectAnswer: "6",
				Explanation:   "Hexa signifie six.",
				Tags:          []string{"polygones"},
			},
		},
		Templates: []*problemgen.Template{
			{
				ID:         "tpl_1_squares",
				ChapterID:  "chapter_1",
				Type:       mc,
				Difficulty: easy,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 2, Max: 9},
					{Name: "b", Min: 2, Max: 9},
				},
				QuestionText: "Calculez: {a}² + {b}² = ?",
				AnswersTemplate: []problemgen.AnswerTemplate{
					{TextFormula: "{a}^2 + {b}^2", IsCorrectFormula: "1"},
					{TextFormula: "({a} + {b})^2", IsCorrectFormula: "0"},
					{TextFormula: "2*{a} + 2*{b}", IsCorrectFormula: "0"},
					{TextFormula: "{a}^2 * {b}^2", IsCorrectFormula: "0"},
				},
				Explanation: "{a}² = {a}×{a} et {b}² = {b}×{b}, puis on additionne.",
				Hints:       []string{"Calculez d'abord {a}².", "Un carré n'est pas un double."},
				Tags:        []string{"calcul", "puissances"},
			},
			{
				ID:         "tpl_1_distributive",
				ChapterID:  "chapter_1",
				Type:       fi,
				Difficulty: medium,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 2, Max: 9},
					{Name: "b", Min: 1, Max: 12},
					{Name: "c", Min: 1, Max: 12},
				},
				QuestionText:         "Calculez: {a} × ({b} + {c}) = ?",
				CorrectAnswerFormula: "{a} * ({b} + {c})",
				Explanation:          "{a} × ({b} + {c}) = {a} × {b} + {a} × {c}",
				Tags:                 []string{"calcul", "priorités"},
			},
			{
				ID:         "tpl_2_affine",
				ChapterID:  "chapter_2",
				Type:       mc,
				Difficulty: medium,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 2, Max: 9},
					{Name: "b", Min: 1, Max: 10},
					{Name: "x", Min: 1, Max: 6},
				},
				QuestionText:         "Soit f(x) = {a}x + {b}. Calculez f({x}).",
				RealLifeText:         "Un taxi facture {b} € de prise en charge puis {a} € par km. Combien coûtent {x} km ?",
				CorrectAnswerFormula: "{a}*{x} + {b}",
				Explanation:          "f({x}) = {a} × {x} + {b}",
				Tags:                 []string{"fonctions", "affine"},
			},
			{
				ID:         "tpl_2_slope",
				ChapterID:  "chapter_2",
				Type:       mc,
				Difficulty: hard,
				Variables: []problemgen.Variable{
					{Name: "b", Min: 1, Max: 9},
					{Name: "c", Min: 10, Max: 20},
				},
				QuestionText: "Une fonction affine f vérifie f(0) = {b} et f(1) = {c}. Quel est son coefficient directeur ?",
				AnswersTemplate: []problemgen.AnswerTemplate{
					{TextFormula: "{c} - {b}", IsCorrectFormula: "1"},
					{TextFormula: "{b} - {c}", IsCorrectFormula: "0"},
					{TextFormula: "{c} + {b}", IsCorrectFormula: "0"},
					{TextFormula: "{c}", IsCorrectFormula: "0"},
				},
				Explanation: "a = (f(1) - f(0)) / (1 - 0) = {c} - {b}",
				Tags:        []string{"fonctions", "affine"},
			},
			{
				ID:         "tpl_3_rectangle",
				ChapterID:  "chapter_3",
				Type:       mc,
				Difficulty: easy,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 2, Max: 12},
					{Name: "b", Min: 2, Max: 12},
				},
				QuestionText: "Quelle est l'aire d'un rectangle de {a} cm sur {b} cm (en cm²) ?",
				AnswersTemplate: []problemgen.AnswerTemplate{
					{TextFormula: "{a} * {b}", IsCorrectFormula: "1"},
					{TextFormula: "2 * ({a} + {b})", IsCorrectFormula: "0"},
				},
				Explanation: "Aire = longueur × largeur = {a} × {b}",
				Tags:        []string{"géométrie", "aires"},
			},
			{
				ID:         "tpl_3_pythagore",
				ChapterID:  "chapter_3",
				Type:       fi,
				Difficulty: hard,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 3, Max: 12},
					{Name: "b", Min: 3, Max: 12},
				},
				QuestionText:         "Un triangle rectangle a des côtés de l'angle droit de {a} cm et {b} cm. Longueur de l'hypoténuse, arrondie au dixième ?",
				CorrectAnswerFormula: "round(sqrt({a}^2 + {b}^2) * 10) / 10",
				Explanation:          "Pythagore: h² = {a}² + {b}²",
				Hints:                []string{"h² = {a}² + {b}²"},
				Tags:                 []string{"géométrie", "pythagore"},
			},
			{
				ID:         "tpl_4_urn",
				ChapterID:  "chapter_4",
				Type:       fi,
				Difficulty: medium,
				Variables: []problemgen.Variable{
					{Name: "r", Min: 1, Max: 9},
					{Name: "b", Min: 1, Max: 9},
				},
				QuestionText:         "Une urne contient {r} boules rouges et {b} boules bleues. Quelle est la probabilité de tirer une boule rouge (arrondie au centième) ?",
				CorrectAnswerFormula: "round({r} / ({r} + {b}) * 100) / 100",
				Explanation:          "p = {r} / ({r} + {b})",
				Tags:                 []string{"probabilités"},
			},
			{
				ID:         "tpl_4_die",
				ChapterID:  "chapter_4",
				Type:       mc,
				Difficulty: easy,
				Variables: []problemgen.Variable{
					{Name: "k", Min: 2, Max: 6},
				},
				QuestionText:         "On lance un dé équilibré à 6 faces. Combien d'issues sont supérieures ou égales à {k} ?",
				CorrectAnswerFormula: "7 - {k}",
				Explanation:          "Les issues {k} à 6 conviennent.",
				Tags:                 []string{"probabilités", "dénombrement"},
			},
			{
				ID:         "tpl_5_sum",
				ChapterID:  "chapter_5",
				Type:       mc,
				Difficulty: easy,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 1, Max: 9},
					{Name: "b", Min: 1, Max: 9},
					{Name: "c", Min: 1, Max: 9},
					{Name: "d", Min: 1, Max: 9},
				},
				QuestionText:         "Soient u({a} ; {b}) et v({c} ; {d}). Quelle est l'abscisse de u + v ?",
				CorrectAnswerFormula: "{a} + {c}",
				Explanation:          "On additionne les abscisses: {a} + {c}",
				Tags:                 []string{"vecteurs"},
			},
			{
				ID:         "tpl_5_norm",
				ChapterID:  "chapter_5",
				Type:       fi,
				Difficulty: hard,
				Variables: []problemgen.Variable{
					{Name: "a", Min: 1, Max: 9},
					{Name: "b", Min: 1, Max: 9},
				},
				QuestionText:         "Quelle est la norme du vecteur u({a} ; {b}), arrondie au centième ?",
				CorrectAnswerFormula: "round(sqrt({a}^2 + {b}^2) * 100) / 100",
				Explanation:          "||u|| = √({a}² + {b}²)",
				Tags:                 []string{"vecteurs", "norme"},
			},
		},
	}
}
