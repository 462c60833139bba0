// internal/sandbox/store.go
// In-memory state of the fake backend

package sandbox

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sacavia/sacavia-go/internal/categories"
	"github.com/sacavia/sacavia-go/internal/events"
	"github.com/sacavia/sacavia-go/internal/locations"
	"github.com/sacavia/sacavia-go/internal/media"
	"github.com/sacavia/sacavia-go/internal/posts"
	"github.com/sacavia/sacavia-go/internal/profile"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrEventFull = errors.New("event is full")
)

type account struct {
	user         profile.User
	passwordHash []byte
	createdAt    time.Time
}

// edge is a directed relation: follower -> followee, user -> post, user -> location.
type edge struct{ from, to string }

type block struct {
	reason string
	at     time.Time
}

// Store holds everything the sandbox serves. All methods are safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	users      map[string]*account
	byEmail    map[string]string
	byUsername map[string]string

	follows map[edge]bool
	blocks  map[edge]block

	posts     map[string]*posts.Post
	postOrder []string
	likes     map[edge]bool
	postSaves map[edge]bool
	comments  []posts.Comment

	locations     map[string]*locations.Location
	locationOrder []string
	locationSaves map[edge]bool
	reviews       map[string][]locations.Review
	tips          map[string][]locations.InsiderTip
	photos        map[string][]locations.CommunityPhoto

	events     map[string]*events.Event
	eventOrder []string
	rsvps      map[edge]events.RSVP

	categories []categories.Category
	media      map[string]media.Uploaded
	reports    map[edge]string
}

func NewStore() *Store {
	return &Store{
		users:         map[string]*account{},
		byEmail:       map[string]string{},
		byUsername:    map[string]string{},
		follows:       map[edge]bool{},
		blocks:        map[edge]block{},
		posts:         map[string]*posts.Post{},
		likes:         map[edge]bool{},
		postSaves:     map[edge]bool{},
		locations:     map[string]*locations.Location{},
		locationSaves: map[edge]bool{},
		reviews:       map[string][]locations.Review{},
		tips:          map[string][]locations.InsiderTip{},
		photos:        map[string][]locations.CommunityPhoto{},
		events:        map[string]*events.Event{},
		rsvps:         map[edge]events.RSVP{},
		media:         map[string]media.Uploaded{},
		reports:       map[edge]string{},
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Users

func (s *Store) CreateUser(u profile.User, hash []byte) (profile.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return profile.User{}, false
	}
	if _, taken := s.byUsername[u.Username]; u.Username != "" && taken {
		return profile.User{}, false
	}

	u.ID = newID()
	u.JoinedAt = now()
	s.users[u.ID] = &account{user: u, passwordHash: hash, createdAt: time.Now()}
	s.byEmail[u.Email] = u.ID
	if u.Username != "" {
		s.byUsername[u.Username] = u.ID
	}
	return u, true
}

// Credentials returns the user and password hash registered under email.
func (s *Store) Credentials(email string) (profile.User, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return profile.User{}, nil, false
	}
	a := s.users[id]
	return a.user, a.passwordHash, true
}

func (s *Store) EmailTaken(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok
}

func (s *Store) UsernameTaken(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUsername[username]
	return ok
}

func (s *Store) UserExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// User returns id's profile as seen by viewer.
func (s *Store) User(viewer, id string) (profile.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLocked(viewer, id)
}

func (s *Store) userLocked(viewer, id string) (profile.User, bool) {
	a, ok := s.users[id]
	if !ok {
		return profile.User{}, false
	}
	u := a.user
	if viewer != id {
		u.Email = ""
	}
	u.IsFollowing = s.follows[edge{viewer, id}]
	u.IsFollowedBy = s.follows[edge{id, viewer}]
	return u, true
}

func (s *Store) UpdateUser(id string, edit func(u *profile.User)) (profile.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return profile.User{}, false
	}
	oldUsername := a.user.Username
	edit(&a.user)
	if a.user.Username != oldUsername {
		delete(s.byUsername, oldUsername)
		s.byUsername[a.user.Username] = id
	}
	return a.user, true
}

func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.byEmail, a.user.Email)
	delete(s.byUsername, a.user.Username)
	delete(s.users, id)
	for e := range s.follows {
		if e.from == id || e.to == id {
			delete(s.follows, e)
		}
	}
}

func (s *Store) Stats(id string) profile.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st profile.Stats
	for e := range s.follows {
		if e.to == id {
			st.FollowersCount++
		}
		if e.from == id {
			st.FollowingCount++
		}
	}
	for _, p := range s.posts {
		if p.Author != nil && p.Author.ID == id {
			st.PostsCount++
		}
	}
	for e := range s.likes {
		if e.from == id {
			st.LikedPostsCount++
		}
	}
	for e := range s.postSaves {
		if e.from == id {
			st.SavedPostsCount++
		}
	}
	for _, l := range s.locations {
		if l.CreatedBy == id {
			st.LocationsCount++
		}
	}
	var total float64
	for _, rs := range s.reviews {
		for _, r := range rs {
			if r.AuthorID == id {
				st.ReviewCount++
				total += r.Rating
			}
		}
	}
	if st.ReviewCount > 0 {
		st.AverageRating = total / float64(st.ReviewCount)
	}
	return st
}

// Social graph

// Follow records from -> to. It reports false when the edge already existed.
func (s *Store) Follow(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := edge{from, to}
	if s.follows[e] {
		return false
	}
	s.follows[e] = true
	return true
}

// Unfollow removes from -> to. It reports false when there was nothing to remove.
func (s *Store) Unfollow(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := edge{from, to}
	if !s.follows[e] {
		return false
	}
	delete(s.follows, e)
	return true
}

// Connections lists followers (incoming=true) or followees of id, oldest id first.
func (s *Store) Connections(viewer, id string, incoming bool) []profile.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []profile.User{}
	for e := range s.follows {
		other := ""
		switch {
		case incoming && e.to == id:
			other = e.from
		case !incoming && e.from == id:
			other = e.to
		}
		if other == "" {
			continue
		}
		if u, ok := s.userLocked(viewer, other); ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Block records the block and drops the target's follow of the blocker. The blocker's
// own follow is left for the client to undo.
func (s *Store) Block(from, to, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[edge{from, to}] = block{reason: reason, at: time.Now()}
	delete(s.follows, edge{to, from})
}

func (s *Store) Unblock(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := edge{from, to}
	if _, ok := s.blocks[e]; !ok {
		return false
	}
	delete(s.blocks, e)
	return true
}

func (s *Store) Blocked(from string) []profile.BlockedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []profile.BlockedUser{}
	for e, b := range s.blocks {
		if e.from != from {
			continue
		}
		bu := profile.BlockedUser{ID: e.to, Reason: b.reason, BlockedAt: b.at.UTC().Format(time.RFC3339)}
		if a, ok := s.users[e.to]; ok {
			bu.Name = a.user.Name
			bu.Username = a.user.Username
		}
		out = append(out, bu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Posts

func (s *Store) author(id string) *posts.Author {
	a, ok := s.users[id]
	if !ok {
		return &posts.Author{ID: id}
	}
	au := &posts.Author{ID: id, Name: a.user.Name, Username: a.user.Username}
	if a.user.ProfileImage != nil {
		au.ProfileImage = a.user.ProfileImage.URL
	}
	return au
}

func (s *Store) CreatePost(authorID string, p posts.Post) posts.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = newID()
	p.Author = s.author(authorID)
	p.CreatedAt = now()
	s.posts[p.ID] = &p
	s.postOrder = append(s.postOrder, p.ID)
	return p
}

func (s *Store) postLocked(viewer, id string) (posts.Post, bool) {
	p, ok := s.posts[id]
	if !ok {
		return posts.Post{}, false
	}
	out := *p
	out.IsLiked = s.likes[edge{viewer, id}]
	out.IsSaved = s.postSaves[edge{viewer, id}]
	return out, true
}

// UserPosts returns authorID's posts, newest first.
func (s *Store) UserPosts(viewer, authorID string) []posts.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []posts.Post{}
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		p, _ := s.postLocked(viewer, s.postOrder[i])
		if p.Author != nil && p.Author.ID == authorID {
			out = append(out, p)
		}
	}
	return out
}

// SetPostFlag sets like or save for user on post and keeps the counter in step.
func (s *Store) SetPostFlag(user, postID string, save, on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return false
	}
	set, counter := s.likes, &p.LikeCount
	if save {
		set, counter = s.postSaves, &p.SaveCount
	}
	e := edge{user, postID}
	switch {
	case on && !set[e]:
		set[e] = true
		*counter++
	case !on && set[e]:
		delete(set, e)
		*counter--
	}
	return true
}

func (s *Store) PostInteractions(user string, ids []string) posts.InteractionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := posts.InteractionState{Interactions: []posts.Interaction{}}
	for _, id := range ids {
		p, ok := s.postLocked(user, id)
		if !ok {
			continue
		}
		st.Interactions = append(st.Interactions, posts.Interaction{
			PostID: id, IsLiked: p.IsLiked, IsSaved: p.IsSaved, LikeCount: p.LikeCount, SaveCount: p.SaveCount,
		})
		st.TotalPosts++
		if p.IsLiked {
			st.TotalLiked++
		}
		if p.IsSaved {
			st.TotalSaved++
		}
	}
	return st
}

func (s *Store) AddComment(authorID string, c posts.Comment) (posts.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[c.PostID]
	if !ok {
		return posts.Comment{}, false
	}
	c.ID = newID()
	c.Author = s.author(authorID)
	c.CreatedAt = now()
	s.comments = append(s.comments, c)
	p.CommentCount++
	return c, true
}

func (s *Store) Comments(postID string) []posts.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []posts.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) SharePost(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if ok {
		p.ShareCount++
	}
	return ok
}

// Locations

func (s *Store) CreateLocation(creator string, l locations.Location) locations.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = newID()
	l.Slug = strings.ToLower(strings.Join(strings.Fields(l.Name), "-"))
	l.CreatedBy = creator
	l.Ownership = locations.OwnershipUnclaimed
	s.locations[l.ID] = &l
	s.locationOrder = append(s.locationOrder, l.ID)
	return l
}

func (s *Store) Location(viewer, id string) (locations.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locationLocked(viewer, id)
}

func (s *Store) locationLocked(viewer, id string) (locations.Location, bool) {
	l, ok := s.locations[id]
	if !ok {
		return locations.Location{}, false
	}
	out := *l
	out.IsSaved = s.locationSaves[edge{viewer, id}]
	return out, true
}

// SearchLocations matches query against name, description and categories.
func (s *Store) SearchLocations(viewer, query string) []locations.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	out := []locations.Location{}
	for _, id := range s.locationOrder {
		l, _ := s.locationLocked(viewer, id)
		hay := strings.ToLower(l.Name + " " + l.Description + " " + strings.Join(l.Categories, " "))
		if strings.Contains(hay, q) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) SetLocationSaved(user, id string, on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok {
		return false
	}
	e := edge{user, id}
	switch {
	case on && !s.locationSaves[e]:
		s.locationSaves[e] = true
		l.SaveCount++
	case !on && s.locationSaves[e]:
		delete(s.locationSaves, e)
		l.SaveCount--
	}
	return true
}

func (s *Store) LocationInteractions(user string, ids []string) locations.InteractionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := locations.InteractionState{Interactions: []locations.Interaction{}}
	for _, id := range ids {
		l, ok := s.locationLocked(user, id)
		if !ok {
			continue
		}
		st.Interactions = append(st.Interactions, locations.Interaction{
			LocationID: id, IsSaved: l.IsSaved, SaveCount: l.SaveCount,
		})
		st.TotalLocations++
		if l.IsSaved {
			st.TotalSaved++
		}
	}
	return st
}

func (s *Store) AddReview(authorID string, r locations.Review) (locations.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[r.LocationID]
	if !ok {
		return locations.Review{}, false
	}
	r.ID = newID()
	r.AuthorID = authorID
	if a, ok := s.users[authorID]; ok {
		r.AuthorName = a.user.Name
	}
	r.CreatedAt = now()
	s.reviews[r.LocationID] = append(s.reviews[r.LocationID], r)

	var total float64
	for _, rv := range s.reviews[r.LocationID] {
		total += rv.Rating
	}
	l.ReviewCount = len(s.reviews[r.LocationID])
	l.AverageRating = total / float64(l.ReviewCount)
	return r, true
}

func (s *Store) Reviews(locationID string) []locations.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]locations.Review{}, s.reviews[locationID]...)
}

func (s *Store) AddTip(authorID string, t locations.InsiderTip) (locations.InsiderTip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[t.LocationID]; !ok {
		return locations.InsiderTip{}, false
	}
	t.ID = newID()
	if a, ok := s.users[authorID]; ok {
		t.AuthorName = a.user.Name
	}
	t.CreatedAt = now()
	s.tips[t.LocationID] = append(s.tips[t.LocationID], t)
	return t, true
}

func (s *Store) Tips(locationID string) []locations.InsiderTip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]locations.InsiderTip{}, s.tips[locationID]...)
}

// AddPhoto stores a community photo as pending moderation.
func (s *Store) AddPhoto(authorID string, p locations.CommunityPhoto) (locations.CommunityPhoto, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[p.LocationID]; !ok {
		return locations.CommunityPhoto{}, false
	}
	p.ID = newID()
	p.Status = "pending"
	if a, ok := s.users[authorID]; ok {
		p.AuthorName = a.user.Name
	}
	p.CreatedAt = now()
	s.photos[p.LocationID] = append(s.photos[p.LocationID], p)
	return p, true
}

// Photos returns only approved photos.
func (s *Store) Photos(locationID string) []locations.CommunityPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []locations.CommunityPhoto{}
	for _, p := range s.photos[locationID] {
		if p.Status == "approved" {
			out = append(out, p)
		}
	}
	return out
}

// ApprovePhotos approves every pending photo of a location.
func (s *Store) ApprovePhotos(locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.photos[locationID] {
		s.photos[locationID][i].Status = "approved"
	}
}

// Media

func (s *Store) AddMedia(m media.Uploaded) media.Uploaded {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = newID()
	m.URL = "/media/" + m.ID + "/" + m.Filename
	s.media[m.ID] = m
	return m
}

// Categories and events

func (s *Store) SetCategories(cs []categories.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]categories.Category{}, cs...)
}

func (s *Store) Categories() []categories.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]categories.Category{}, s.categories...)
}

func (s *Store) AddEvent(e events.Event) events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	s.events[e.ID] = &e
	s.eventOrder = append(s.eventOrder, e.ID)
	return e
}

func (s *Store) eventLocked(viewer, id string) (events.Event, bool) {
	e, ok := s.events[id]
	if !ok {
		return events.Event{}, false
	}
	out := *e
	out.UserRSVP = s.rsvps[edge{viewer, id}]
	return out, true
}

func (s *Store) Event(viewer, id string) (events.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventLocked(viewer, id)
}

func (s *Store) Events(viewer, category string, status events.Status) []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []events.Event{}
	for _, id := range s.eventOrder {
		e, _ := s.eventLocked(viewer, id)
		if (category == "" || e.Category == category) && (status == "" || e.Status == status) {
			out = append(out, e)
		}
	}
	return out
}

// RSVP moves user's participation and keeps the going/interested counters in step.
func (s *Store) RSVP(user, id string, status events.RSVP) (events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return events.Event{}, ErrNotFound
	}
	k := edge{user, id}
	prev := s.rsvps[k]
	if status == events.RSVPGoing && prev != events.RSVPGoing && e.Full() {
		return events.Event{}, ErrEventFull
	}
	switch prev {
	case events.RSVPGoing:
		e.ParticipantCount--
	case events.RSVPInterested:
		e.InterestedCount--
	}
	switch status {
	case events.RSVPGoing:
		e.ParticipantCount++
	case events.RSVPInterested:
		e.InterestedCount++
	}
	s.rsvps[k] = status
	out, _ := s.eventLocked(user, id)
	return out, nil
}

// AddReport files one report per user and content key. It reports false on a repeat.
func (s *Store) AddReport(user, contentKey string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := edge{user, contentKey}
	if _, ok := s.reports[k]; ok {
		return "", false
	}
	id := newID()
	s.reports[k] = id
	return id, true
}
