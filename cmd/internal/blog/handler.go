package blog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"quill/cmd/internal/gateway"
	"quill/cmd/internal/web"
)

// maxFormBytes bounds every form body under these routes.
const maxFormBytes = 1 << 20

// Middleware wraps a handler, e.g. with session authentication.
type Middleware func(http.Handler) http.Handler

// Handler serves the home page and /posts routes.
type Handler struct {
	log      *slog.Logger
	svc      *Service
	tokens   web.Tokens
	renderer web.Renderer
}

func NewHandler(log *slog.Logger, svc *Service, tokens web.Tokens, renderer web.Renderer) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if renderer == nil {
		renderer = web.JSONRenderer{}
	}
	return &Handler{log: log, svc: svc, tokens: tokens, renderer: renderer}
}

// Register mounts every route behind auth.
func (h *Handler) Register(mux *http.ServeMux, auth Middleware) {
	if auth == nil {
		auth = func(next http.Handler) http.Handler { return next }
	}
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			}
			fn(w, r)
		})))
	}

	handle("GET /{$}", h.handleHome)
	handle("GET /posts", h.handlePostsIndex)
	handle("GET /posts/new", h.handleNewForm)
	handle("POST /posts/new", h.handleCreate)
	handle("GET /posts/{id}", h.handleView)
	handle("GET /posts/{id}/edit", h.handleEditForm)
	handle("POST /posts/{id}/edit", h.handleEdit)
	handle("POST /posts/{id}/delete", h.handleDelete)
	handle("POST /posts/{id}/comments", h.handleComment)
	handle("/posts/{id}/{rest...}", h.handleUnknownPostRoute)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := h.svc.Home(r.Context(), ParsePage(r.URL.Query().Get("page")))
	if err != nil {
		if errors.Is(err, ErrPageOutOfRange) {
			err = web.NotFound(MsgPageOutOfRange)
		}
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, homeView(home))
}

func (h *Handler) handlePostsIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleNewForm(w http.ResponseWriter, r *http.Request) {
	tok, err := h.tokens.Issue(w, web.FormTokenCookie)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, web.EditorPage{Heading: "Create new post", Token: tok})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := web.UserID(r.Context())
	tok, err := h.tokens.Verify(w, r, web.FormTokenCookie)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	title, content := r.PostFormValue("title"), r.PostFormValue("content")
	id, err := h.svc.Create(r.Context(), userID, title, content)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.render(w, r, http.StatusBadRequest, web.EditorPage{
				Heading: "Create new post", Title: title, Content: content, Error: ve.Message, Token: tok,
			})
			return
		}
		h.fail(w, r, err)
		return
	}

	h.tokens.Clear(w, web.FormTokenCookie)
	http.Redirect(w, r, postPath(id), http.StatusFound)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	h.renderPost(w, r, id, http.StatusOK, "")
}

func (h *Handler) renderPost(w http.ResponseWriter, r *http.Request, id int64, status int, msg string) {
	userID, _ := web.UserID(r.Context())

	p, comments, err := h.svc.Post(r.Context(), id)
	if err != nil {
		h.fail(w, r, notFound(id, err))
		return
	}

	view := postView(p, comments)
	view.Error = msg
	if p.UserID == userID {
		view.IsOwner = true
		if view.DeleteToken, err = h.tokens.Issue(w, web.DeleteTokenCookie); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if view.CommentToken, err = h.tokens.Issue(w, web.CommentTokenCookie); err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, view)
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	userID, _ := web.UserID(r.Context())

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, notFound(id, err))
		return
	}
	if p.UserID != userID {
		http.Redirect(w, r, postPath(id), http.StatusFound)
		return
	}

	tok, err := h.tokens.Issue(w, web.FormTokenCookie)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, web.EditorPage{
		Heading: "Edit post", PostID: p.ID, Title: p.Title, Content: p.Content, Token: tok,
	})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	userID, _ := web.UserID(r.Context())
	tok, err := h.tokens.Verify(w, r, web.FormTokenCookie)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	title, content := r.PostFormValue("title"), r.PostFormValue("content")
	if err := h.svc.Update(r.Context(), id, userID, title, content); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.render(w, r, http.StatusBadRequest, web.EditorPage{
				Heading: "Edit post", PostID: id, Title: title, Content: content, Error: ve.Message, Token: tok,
			})
			return
		}
		h.fail(w, r, err)
		return
	}

	h.tokens.Clear(w, web.FormTokenCookie)
	http.Redirect(w, r, postPath(id), http.StatusFound)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	userID, _ := web.UserID(r.Context())
	if _, err := h.tokens.Verify(w, r, web.DeleteTokenCookie); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.tokens.Clear(w, web.DeleteTokenCookie)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	userID, _ := web.UserID(r.Context())
	if _, err := h.tokens.Verify(w, r, web.CommentTokenCookie); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.svc.Comment(r.Context(), id, userID, r.PostFormValue("content")); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.renderPost(w, r, id, http.StatusBadRequest, ve.Message)
			return
		}
		h.fail(w, r, notFound(id, err))
		return
	}

	h.tokens.Clear(w, web.CommentTokenCookie)
	http.Redirect(w, r, postPath(id), http.StatusFound)
}

func (h *Handler) handleUnknownPostRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, postPath(id), http.StatusFound)
}

// ---- helpers ----

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.fail(w, r, web.BadRequest(MsgInvalidPostID))
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	web.WriteError(w, r, h.renderer, h.log, err)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, v web.View) {
	web.Render(w, r, h.renderer, h.log, status, v)
}

func notFound(id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return web.Errorf(http.StatusNotFound, msgPostNotFoundFmt, id)
	}
	return err
}

func postPath(id int64) string { return "/posts/" + strconv.FormatInt(id, 10) }

func homeView(h Home) web.HomePage {
	v := web.HomePage{
		Rows:       make([]web.PostRow, 0, len(h.Rows)),
		Total:      h.Total,
		Page:       h.Page,
		PagesCount: h.PagesCount,
		Next:       h.Next(),
		Previous:   h.Previous(),
	}
	for _, p := range h.Rows {
		v.Rows = append(v.Rows, web.PostRow{
			ID: p.ID, Title: p.Title, Author: p.Author, Content: p.Content,
			CreatedAt: p.CreatedAt, CommentCount: p.CommentCount,
		})
	}
	for i := 1; i <= h.PagesCount; i++ {
		v.Pages = append(v.Pages, web.PageLink{Number: i, Current: i == h.Page})
	}
	return v
}

func postView(p gateway.Post, comments []gateway.Comment) web.PostPage {
	v := web.PostPage{
		Post: web.PostDetail{
			ID: p.ID, Title: p.Title, Author: p.Author, Content: p.Content,
			CreatedAt: p.CreatedAt, Edited: p.Edited,
		},
		Comments:     make([]web.CommentRow, 0, len(comments)),
		CommentCount: len(comments),
	}
	for _, c := range comments {
		v.Comments = append(v.Comments, web.CommentRow{
			ID: c.ID, Author: c.Author, Content: c.Content, CreatedAt: c.CreatedAt,
		})
	}
	return v
}
