// Package devserver is an in-memory stand-in for the production
// backend. It serves the same POST+JSON envelope and endpoints the
// client consumes, for local development and integration tests.
package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/xiaoen-app/appcore/pkg/api"
	"github.com/xiaoen-app/appcore/pkg/structs"
)

type Server struct {
	mu      sync.Mutex
	nextId  int64
	tokens  map[string]int64 // token -> user id
	users   map[int64]*structs.User
	creds   map[string]string // username -> password
	userIds map[string]int64  // username -> user id

	posts    []*structs.Post    // newest first
	comments []*structs.Comment // newest first
	replies  []*structs.Reply   // newest first

	postLikers    map[int64]map[int64]bool // post id -> user id -> liked
	commentLikers map[int64]map[int64]bool
}

func New() *Server {
	s := &Server{
		nextId:        1000,
		tokens:        map[string]int64{},
		users:         map[int64]*structs.User{},
		creds:         map[string]string{},
		userIds:       map[string]int64{},
		postLikers:    map[int64]map[int64]bool{},
		commentLikers: map[int64]map[int64]bool{},
	}
	s.seed()
	return s
}

func (s *Server) genId() int64 {
	s.nextId++
	return s.nextId
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(username, password, nickname string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.genId()
	s.users[id] = &structs.User{
		Id:        id,
		Username:  username,
		Nickname:  nickname,
		AvatarUrl: "/static/default-avatar.png",
	}
	s.creds[username] = password
	s.userIds[username] = id
	return id
}

// AddPost inserts a post at the head of the feed and returns its id.
func (s *Server) AddPost(authorId int64, title, content string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPostLocked(authorId, title, content)
}

func (s *Server) addPostLocked(authorId int64, title, content string) int64 {
	author := s.users[authorId]
	p := &structs.Post{
		Id:             s.genId(),
		Title:          title,
		Content:        content,
		PosterNickname: author.Nickname,
		AvatarUrl:      author.AvatarUrl,
		CreateAt:       time.Now().Format("2006-01-02 15:04:05"),
	}
	s.posts = append([]*structs.Post{p}, s.posts...)
	return p.Id
}

func (s *Server) addCommentLocked(authorId, postId int64, content string) int64 {
	author := s.users[authorId]
	c := &structs.Comment{
		Id:             s.genId(),
		PostId:         postId,
		Content:        content,
		PosterNickname: author.Nickname,
		AvatarUrl:      author.AvatarUrl,
		CreateAt:       time.Now().Format("2006-01-02 15:04:05"),
	}
	s.comments = append([]*structs.Comment{c}, s.comments...)
	for _, p := range s.posts {
		if p.Id == postId {
			p.CommentCount++
		}
	}
	return c.Id
}

func (s *Server) addReplyLocked(authorId, commentId, replyTo int64, content string) int64 {
	author := s.users[authorId]
	r := &structs.Reply{
		Id:             s.genId(),
		Parent:         commentId,
		PosterId:       authorId,
		PosterNickname: author.Nickname,
		AvatarUrl:      author.AvatarUrl,
		Content:        content,
		ReplyToId:      replyTo,
		CreateAt:       time.Now().Format("2006-01-02 15:04:05"),
	}
	s.replies = append([]*structs.Reply{r}, s.replies...)
	for _, c := range s.comments {
		if c.Id == commentId {
			c.CommentCount++
		}
	}
	return r.Id
}

func (s *Server) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	demo := s.genId()
	s.users[demo] = &structs.User{
		Id:        demo,
		Username:  "demo",
		Nickname:  "演示用户",
		AvatarUrl: "/static/default-avatar.png",
	}
	s.creds["demo"] = "demo"
	s.userIds["demo"] = demo

	for i := 1; i <= 20; i++ {
		pid := s.addPostLocked(demo, fmt.Sprintf("种子帖子 %d", i), fmt.Sprintf("这是第 %d 条种子内容。", i))
		if i%3 == 0 {
			cid := s.addCommentLocked(demo, pid, "沙发")
			s.addReplyLocked(demo, cid, 0, "前排")
		}
	}
}

// Handler returns the CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"OPTIONS", "GET", "POST"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.Router())
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/api/v1/user/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/api/v1/user/auth/get_userinfo", s.getUserInfo)
		r.Post("/api/v1/user/auth/update_userinfo", s.updateUserInfo)

		r.Post("/api/v1/post/auth/list", s.listPosts)
		r.Post("/api/v1/post/auth/create", s.createPost)
		r.Post("/api/v1/post/auth/like", s.likePost)
		r.Post("/api/v1/post/auth/{id}", s.getPost)

		r.Post("/api/v1/comment/auth/list", s.listComments)
		r.Post("/api/v1/comment/auth/create", s.createComment)
		r.Post("/api/v1/comment/auth/like", s.likeComment)
		r.Post("/api/v1/comment/auth/listreply", s.listReplies)
		r.Post("/api/v1/comment/auth/createreply", s.createReply)
	})

	return r
}

type ctxKey string

const userKey ctxKey = "user"

func (s *Server) requireAuth(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		userId, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeErr(w, api.CodeTokenExpired, "登录失效")
			return
		}
		h.ServeHTTP(w, withUser(r, userId))
	})
}

// RevokeTokens invalidates every issued token, for exercising the
// forced-logout path.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = map[string]int64{}
	s.mu.Unlock()
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds[body.Username] != body.Password || body.Password == "" {
		writeErr(w, 40001, "用户名或密码错误")
		return
	}
	raw := make([]byte, 16)
	rand.Read(raw)
	token := hex.EncodeToString(raw)
	s.tokens[token] = s.userIds[body.Username]
	writeData(w, map[string]string{"token": token})
}

func (s *Server) getUserInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := *s.users[requestUser(r)]
	s.mu.Unlock()
	writeData(w, user)
}

func (s *Server) updateUserInfo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname   string `json:"nickname"`
		Department string `json:"department"`
		Campus     string `json:"campus"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mu.Lock()
	user := s.users[requestUser(r)]
	if body.Nickname != "" {
		user.Nickname = body.Nickname
	}
	user.Department = body.Department
	user.Campus = body.Campus
	s.mu.Unlock()
	writeData(w, nil)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LastPid int64 `json:"last_pid"`
		Size    int   `json:"size"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	viewer := requestUser(r)
	page := []structs.Post{}
	for _, p := range s.posts {
		if body.LastPid != 0 && p.Id >= body.LastPid {
			continue
		}
		page = append(page, s.postView(p, viewer))
		if len(page) == body.Size {
			break
		}
	}
	writeData(w, page)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErr(w, 40000, "无效的帖子 id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Id == id {
			p.ViewCount++
			writeData(w, s.postView(p, requestUser(r)))
			return
		}
	}
	writeErr(w, 40004, "帖子不存在")
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		ImageUrls []string `json:"image_urls"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Content) == "" {
		writeErr(w, 40000, "标题或内容不能为空")
		return
	}

	s.mu.Lock()
	id := s.addPostLocked(requestUser(r), body.Title, body.Content)
	s.mu.Unlock()
	writeData(w, map[string]int64{"id": id})
}

func (s *Server) likePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PostId     int64 `json:"post_id"`
		LikeStatus int8  `json:"like_status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Id != body.PostId {
			continue
		}
		likers := s.postLikers[p.Id]
		if likers == nil {
			likers = map[int64]bool{}
			s.postLikers[p.Id] = likers
		}
		viewer := requestUser(r)
		if body.LikeStatus == 1 && !likers[viewer] {
			likers[viewer] = true
			p.LikeCount++
		} else if body.LikeStatus == 0 && likers[viewer] {
			delete(likers, viewer)
			p.LikeCount--
		}
		writeLike(w, likers[viewer], p.LikeCount)
		return
	}
	writeErr(w, 40004, "帖子不存在")
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LastCid int64 `json:"last_cid"`
		PostId  int64 `json:"post_id"`
		Size    int   `json:"size"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	viewer := requestUser(r)
	page := []structs.Comment{}
	for _, c := range s.comments {
		if c.PostId != body.PostId {
			continue
		}
		if body.LastCid != 0 && c.Id >= body.LastCid {
			continue
		}
		page = append(page, s.commentView(c, viewer))
		if len(page) == body.Size {
			break
		}
	}
	writeData(w, page)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
		PostId  int64  `json:"post_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeErr(w, 40000, "内容不能为空")
		return
	}

	s.mu.Lock()
	id := s.addCommentLocked(requestUser(r), body.PostId, body.Content)
	s.mu.Unlock()
	writeData(w, map[string]int64{"id": id})
}

func (s *Server) likeComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CommentId  int64 `json:"comment_id"`
		LikeStatus int8  `json:"like_status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.Id != body.CommentId {
			continue
		}
		likers := s.commentLikers[c.Id]
		if likers == nil {
			likers = map[int64]bool{}
			s.commentLikers[c.Id] = likers
		}
		viewer := requestUser(r)
		if body.LikeStatus == 1 && !likers[viewer] {
			likers[viewer] = true
			c.LikeCount++
		} else if body.LikeStatus == 0 && likers[viewer] {
			delete(likers, viewer)
			c.LikeCount--
		}
		writeLike(w, likers[viewer], c.LikeCount)
		return
	}
	writeErr(w, 40004, "评论不存在")
}

func (s *Server) listReplies(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LastScid int64 `json:"last_scid"`
		Parent   int64 `json:"parent"`
		Size     int   `json:"size"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page := []structs.Reply{}
	for _, reply := range s.replies {
		if reply.Parent != body.Parent {
			continue
		}
		if body.LastScid != 0 && reply.Id >= body.LastScid {
			continue
		}
		page = append(page, *reply)
		if len(page) == body.Size {
			break
		}
	}
	writeData(w, page)
}

func (s *Server) createReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
		PostId  int64  `json:"post_id"`
		Parent  int64  `json:"parent"`
		Reply   int64  `json:"reply"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeErr(w, 40000, "内容不能为空")
		return
	}

	s.mu.Lock()
	id := s.addReplyLocked(requestUser(r), body.Parent, body.Reply, body.Content)
	s.mu.Unlock()
	writeData(w, map[string]int64{"id": id})
}

// postView fills in the viewer-dependent like state without mutating
// the shared record.
func (s *Server) postView(p *structs.Post, viewer int64) structs.Post {
	view := *p
	if s.postLikers[p.Id][viewer] {
		view.LikeStatus = 1
	}
	return view
}

func (s *Server) commentView(c *structs.Comment, viewer int64) structs.Comment {
	view := *c
	if s.commentLikers[c.Id][viewer] {
		view.LikeStatus = 1
	}
	return view
}
