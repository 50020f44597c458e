package speaker

import "fmt"

var names = []string{
	"PROFESSOR",
	"Student 1",
	"Student 2",
	"Student 3",
	"Student 4",
	"Student 5",
}

// Name resolves a speaker id to its display label. Ids outside the fixed
// roster get a generic label.
func Name(id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return fmt.Sprintf("Speaker %d", id+1)
}

var palette = []string{
	"", // professor, configurable
	"#2980b9",
	"#27ae60",
	"#8e44ad",
	"#f39c12",
	"#16a085",
}

// Color returns the display color for a speaker id.
func Color(id int, professorColor string) string {
	if id < 0 {
		id = -id
	}
	idx := id % len(palette)
	if idx == Professor {
		if professorColor == "" {
			return DefaultProfessorColor
		}
		return professorColor
	}
	return palette[idx]
}
