package apitest

func ptr[T any](v T) *T { return &v }

// SeedDemo loads a small catalogue used by the standalone fake API.
func (s *Server) SeedDemo() {
	s.AddSchool(School{ID: 1, Name: "Northfield State University", City: "Northfield", State: "MN", PublicPrivate: "Public", TuitionText: "$11,200", MaxTuition: 11200})
	s.AddSchool(School{ID: 2, Name: "Harbor College", City: "Portland", State: "ME", PublicPrivate: "Private", TuitionText: "$54,800", MaxTuition: 54800, LegacyTuitionKey: true})
	s.AddSchool(School{ID: 3, Name: "Desert Tech", City: "Tempe", State: "AZ", PublicPrivate: "Public"})

	s.AddProfessor(Professor{ID: 1, SchoolID: 1, FirstName: "Ada", LastName: "Lovelace", Department: "Mathematics", Level: "Professor", Email: "ada@northfield.edu", Bio: "Works on analytical engines."})
	s.AddProfessor(Professor{ID: 2, SchoolID: 1, FirstName: "Alan", LastName: "Turing", Department: "Computer Science", Level: "Associate Professor", Email: "alan@northfield.edu"})
	s.AddProfessor(Professor{ID: 3, SchoolID: 2, FirstName: "Grace", LastName: "Hopper", Department: "Computer Science", Level: "Professor", Rating: ptr(4.6)})
	s.AddProfessor(Professor{ID: 4, SchoolID: 3, FirstName: "Edsger", LastName: "Dijkstra", Department: "Computer Science"})

	for _, r := range []struct {
		id    int
		stars int
		text  string
	}{
		{1, 5, "Clear and demanding."},
		{1, 4, "Great lectures, hard exams."},
		{1, 5, ""},
		{2, 3, "Brilliant but fast."},
		{2, 4, ""},
		{3, 5, "Best teacher I had."},
	} {
		s.AddRating(r.id, r.stars, r.text)
	}
	s.AddRawRating(2, `"n/a"`, "imported row without stars")

	s.AddUser("demo@example.edu", "demo1234")
}
