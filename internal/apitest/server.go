// Package apitest is an in-memory stand-in for the ratings API, used by the
// client and CLI tests. It implements only the endpoints the client calls.
package apitest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type School struct {
	ID            int
	Name          string
	City          string
	State         string
	PublicPrivate string
	TuitionText   string
	MaxTuition    float64
	// LegacyTuitionKey makes the school answer with "tuition_text" instead of "tuition".
	LegacyTuitionKey bool
}

type Professor struct {
	ID         int
	SchoolID   int
	FirstName  string
	LastName   string
	Department string
	Level      string
	Email      string
	Bio        string
	// Rating is the manually imported RMP score, sent as "rating".
	Rating *float64
}

type storedRating struct {
	id        int
	stars     json.RawMessage
	comment   string
	userID    int
	createdAt time.Time
}

type user struct {
	id    int
	name  string
	email string
	hash  []byte
}

type serverAggregate struct {
	avg   float64
	count int
}

type failure struct {
	status int
	detail string
}

// Server is a running fake API.
type Server struct {
	URL string

	secret []byte
	srv    *httptest.Server

	mu         sync.Mutex
	schools    map[int]School
	professors map[int]Professor
	ratings    map[int][]storedRating
	users      map[string]user
	overrides  map[int]serverAggregate
	failures   map[string]failure
	hits       map[string]int
	nextID     int
	delay      time.Duration
}

// New starts a fake API on a loopback port.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := NewUnstarted()
	s.srv = httptest.NewServer(s.router())
	s.URL = s.srv.URL
	return s
}

// NewUnstarted returns a fake API without a listener; serve it with Handler.
func NewUnstarted() *Server {
	return &Server{
		secret:     []byte("apitest-secret"),
		schools:    map[int]School{},
		professors: map[int]Professor{},
		ratings:    map[int][]storedRating{},
		users:      map[string]user{},
		overrides:  map[int]serverAggregate{},
		failures:   map[string]failure{},
		hits:       map[string]int{},
		nextID:     1000,
	}
}

func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

// Handler is the API router, for serving on a real listener.
func (s *Server) Handler() http.Handler { return s.router() }

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.track())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
	}

	schools := r.Group("/schools")
	{
		schools.GET("/search", s.searchSchools)
		schools.GET("/:id", s.getSchool)
		schools.GET("/:id/professors", s.schoolProfessors)
	}

	profs := r.Group("/professors")
	{
		profs.GET("/search", s.searchProfessors)
		profs.GET("/:id", s.getProfessor)
		profs.GET("/:id/ratings", s.listRatings)
		profs.POST("/:id/ratings", s.requireAuth(), s.createRating)
	}
	return r
}

// --- seeding and knobs ---

// SetSecret replaces the HMAC key used to sign and verify tokens.
func (s *Server) SetSecret(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(secret)
}

func (s *Server) AddSchool(sc School) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schools[sc.ID] = sc
}

func (s *Server) AddProfessor(p Professor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.professors[p.ID] = p
}

// AddRating stores a well-formed rating.
func (s *Server) AddRating(professorID, stars int, comment string) {
	s.AddRawRating(professorID, strconv.Itoa(stars), comment)
}

// AddRawRating stores a rating whose stars field is the given JSON literal.
func (s *Server) AddRawRating(professorID int, rawStars, comment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.ratings[professorID] = append(s.ratings[professorID], storedRating{
		id:        s.nextID,
		stars:     json.RawMessage(rawStars),
		comment:   comment,
		createdAt: time.Now().UTC(),
	})
}

// AddUser registers an account directly.
func (s *Server) AddUser(email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.users[strings.ToLower(email)] = user{id: s.nextID, email: email, hash: hash}
}

// Token issues a valid bearer token for an arbitrary user id.
func (s *Server) Token(userID int) string {
	tok, err := s.sign(userID)
	if err != nil {
		panic(err)
	}
	return tok
}

// OverrideAggregates makes GET /professors/{id} report the given avg_stars
// and ratings_count regardless of the stored ratings.
func (s *Server) OverrideAggregates(professorID int, avg float64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[professorID] = serverAggregate{avg: avg, count: count}
}

// Fail makes every request to path answer with status until cleared with
// status 0.
func (s *Server) Fail(path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = failure{status: status, detail: detail}
}

// SetDelay slows every response down.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Hits reports how many requests reached "METHOD /path".
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// RatingCount is the number of stored ratings for a professor.
func (s *Server) RatingCount(professorID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings[professorID])
}

// --- middleware ---

func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		s.mu.Lock()
		s.hits[c.Request.Method+" "+path]++
		f, failing := s.failures[path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if failing {
			c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			return
		}
		c.Next()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.key(), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		uid, _ := strconv.Atoi(claims.Subject)
		c.Set("user_id", uid)
		c.Next()
	}
}

func (s *Server) sign(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key())
}

func (s *Server) key() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secret
}

// --- auth ---

type credentialsBody struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req credentialsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to hash password"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, exists := s.users[key]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}
	s.nextID++
	u := user{id: s.nextID, name: req.Name, email: req.Email, hash: hash}
	s.users[key] = u

	var name any
	if u.name != "" {
		name = u.name
	}
	c.JSON(http.StatusOK, gin.H{"id": u.id, "name": name, "email": u.email})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}

	tok, err := s.sign(u.id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tok, "token_type": "bearer"})
}

// --- schools ---

func (s *Server) searchSchools(c *gin.Context) {
	state := strings.ToLower(c.Query("state"))
	kind := strings.ToLower(c.Query("public_private"))
	search := strings.ToLower(c.Query("search"))
	maxTuition, _ := strconv.ParseFloat(c.Query("max_tuition"), 64)

	s.mu.Lock()
	var items []gin.H
	for _, sc := range s.sortedSchools() {
		if state != "" && !strings.Contains(strings.ToLower(sc.State), state) {
			continue
		}
		if kind != "" && strings.ToLower(sc.PublicPrivate) != kind {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sc.Name), search) {
			continue
		}
		if maxTuition > 0 && sc.MaxTuition > maxTuition {
			continue
		}
		items = append(items, schoolJSON(sc))
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, paginate(c, items))
}

func (s *Server) getSchool(c *gin.Context) {
	id, ok := intParam(c)
	if !ok {
		return
	}
	s.mu.Lock()
	sc, found := s.schools[id]
	s.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "School not found"})
		return
	}
	c.JSON(http.StatusOK, schoolJSON(sc))
}

func (s *Server) schoolProfessors(c *gin.Context) {
	id, ok := intParam(c)
	if !ok {
		return
	}
	level := c.Query("level")
	dept := strings.ToLower(c.Query("department"))
	search := strings.ToLower(c.Query("search"))

	s.mu.Lock()
	var items []gin.H
	for _, p := range s.sortedProfessors() {
		if p.SchoolID != id {
			continue
		}
		if level != "" && p.Level != level {
			continue
		}
		if dept != "" && !strings.Contains(strings.ToLower(p.Department), dept) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), search) {
			continue
		}
		items = append(items, summaryJSON(p))
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, paginate(c, items))
}

// --- professors ---

func (s *Server) searchProfessors(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	items := []gin.H{}
	for _, p := range s.sortedProfessors() {
		if q != "" && !strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), q) {
			continue
		}
		items = append(items, summaryJSON(p))
		if len(items) == limit {
			break
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (s *Server) getProfessor(c *gin.Context) {
	id, ok := intParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.professors[id]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Professor not found"})
		return
	}

	out := summaryJSON(p)
	out["first_name"] = p.FirstName
	out["last_name"] = p.LastName
	out["school_id"] = p.SchoolID
	out["bio"] = p.Bio
	out["rating"] = p.Rating

	if o, overridden := s.overrides[id]; overridden {
		out["avg_stars"] = o.avg
		out["ratings_count"] = o.count
	} else {
		sum, n := 0, 0
		for _, r := range s.ratings[id] {
			if v, err := strconv.Atoi(string(r.stars)); err == nil && v >= 1 && v <= 5 {
				sum += v
				n++
			}
		}
		out["ratings_count"] = n
		if n > 0 {
			out["avg_stars"] = math.Round(float64(sum)/float64(n)*100) / 100
		} else {
			out["avg_stars"] = nil
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listRatings(c *gin.Context) {
	id, ok := intParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.professors[id]; !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Professor not found"})
		return
	}
	out := make([]gin.H, 0, len(s.ratings[id]))
	for _, r := range s.ratings[id] {
		out = append(out, gin.H{
			"id":           r.id,
			"professor_id": id,
			"stars":        r.stars,
			"comment":      nullable(r.comment),
			"created_at":   r.createdAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type ratingBody struct {
	Stars   int     `json:"stars"`
	Comment *string `json:"comment"`
}

func (s *Server) createRating(c *gin.Context) {
	id, ok := intParam(c)
	if !ok {
		return
	}
	var req ratingBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "stars must be an integer"}}})
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be between 1 and 5"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.professors[id]; !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Professor not found"})
		return
	}
	s.nextID++
	r := storedRating{
		id:        s.nextID,
		stars:     json.RawMessage(strconv.Itoa(req.Stars)),
		userID:    c.GetInt("user_id"),
		createdAt: time.Now().UTC(),
	}
	if req.Comment != nil {
		r.comment = *req.Comment
	}
	s.ratings[id] = append(s.ratings[id], r)

	c.JSON(http.StatusCreated, gin.H{
		"id":           r.id,
		"professor_id": id,
		"stars":        req.Stars,
		"comment":      nullable(r.comment),
		"created_at":   r.createdAt,
	})
}

// --- helpers ---

// callers hold s.mu
func (s *Server) sortedSchools() []School {
	out := make([]School, 0, len(s.schools))
	for _, sc := range s.schools {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// callers hold s.mu
func (s *Server) sortedProfessors() []Professor {
	out := make([]Professor, 0, len(s.professors))
	for _, p := range s.professors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func schoolJSON(sc School) gin.H {
	out := gin.H{
		"id":             sc.ID,
		"name":           sc.Name,
		"city":           nullable(sc.City),
		"state":          nullable(sc.State),
		"public_private": nullable(sc.PublicPrivate),
	}
	if sc.LegacyTuitionKey {
		out["tuition_text"] = nullable(sc.TuitionText)
	} else {
		out["tuition"] = nullable(sc.TuitionText)
	}
	return out
}

func summaryJSON(p Professor) gin.H {
	return gin.H{
		"id":         p.ID,
		"name":       strings.TrimSpace(p.FirstName + " " + p.LastName),
		"department": nullable(p.Department),
		"level":      nullable(p.Level),
		"email":      nullable(p.Email),
	}
}

func paginate(c *gin.Context, items []gin.H) gin.H {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || size < 1 {
		size = 20
	}

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	window := items[start:end]
	if window == nil {
		window = []gin.H{}
	}
	return gin.H{"total": len(items), "page": page, "page_size": size, "items": window}
}

func intParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "id must be an integer"})
		return 0, false
	}
	return id, true
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
