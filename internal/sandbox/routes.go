// internal/sandbox/routes.go

package sandbox

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the mobile API the SDK talks to.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *Middleware) {
	// Public routes
	public := router.PathPrefix("/api").Subrouter()
	public.HandleFunc("/mobile/auth/register", handler.Register).Methods("POST")
	public.HandleFunc("/mobile/auth/login", handler.Login).Methods("POST")
	public.HandleFunc("/mobile/auth/check-username", handler.CheckUsername).Methods("GET")
	public.HandleFunc("/mobile/auth/check-email", handler.CheckEmail).Methods("GET")
	public.HandleFunc("/categories", handler.ListCategories).Methods("GET")

	api := router.PathPrefix("/api/mobile").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/auth/logout", handler.Logout).Methods("POST")

	// Users
	api.HandleFunc("/users/profile", handler.GetProfile).Methods("GET")
	api.HandleFunc("/users/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/users/blocked", handler.GetBlockedUsers).Methods("GET")
	api.HandleFunc("/users/block", handler.BlockUser).Methods("POST")
	api.HandleFunc("/users/block", handler.UnblockUser).Methods("DELETE")
	api.HandleFunc("/users/delete-account", handler.DeleteAccount).Methods("POST")
	api.HandleFunc("/users/{id}/posts", handler.GetUserPosts).Methods("GET")
	api.HandleFunc("/users/{id}/stats", handler.GetStats).Methods("GET")
	api.HandleFunc("/users/{id}/followers", handler.GetFollowers).Methods("GET")
	api.HandleFunc("/users/{id}/following", handler.GetFollowing).Methods("GET")
	api.HandleFunc("/users/{id}/follow", handler.Follow).Methods("POST")
	api.HandleFunc("/users/{id}/follow", handler.Unfollow).Methods("DELETE")

	// Posts
	api.HandleFunc("/posts", handler.CreatePost).Methods("POST")
	api.HandleFunc("/posts/interaction-state", handler.PostInteractionState).Methods("POST")
	api.HandleFunc("/posts/comments", handler.GetComments).Methods("GET")
	api.HandleFunc("/posts/comments", handler.AddComment).Methods("POST")
	api.HandleFunc("/posts/{id}/like", handler.LikePost).Methods("POST", "DELETE")
	api.HandleFunc("/posts/{id}/save", handler.SavePost).Methods("POST", "DELETE")
	api.HandleFunc("/posts/{id}/share", handler.SharePost).Methods("POST")

	// Locations
	api.HandleFunc("/locations", handler.CreateLocation).Methods("POST")
	api.HandleFunc("/locations/search", handler.SearchLocations).Methods("POST")
	api.HandleFunc("/locations/interaction-state", handler.LocationInteractionState).Methods("POST")
	api.HandleFunc("/locations/{id}", handler.GetLocation).Methods("GET")
	api.HandleFunc("/locations/{id}/save", handler.SaveLocation).Methods("POST")
	api.HandleFunc("/locations/{id}/reviews", handler.GetReviews).Methods("GET")
	api.HandleFunc("/locations/{id}/reviews", handler.AddReview).Methods("POST")
	api.HandleFunc("/locations/{id}/insider-tips", handler.GetTips).Methods("GET")
	api.HandleFunc("/locations/{id}/insider-tips", handler.AddTip).Methods("POST")
	api.HandleFunc("/locations/{id}/community-photos", handler.GetPhotos).Methods("GET")
	api.HandleFunc("/locations/{id}/community-photos", handler.AddPhoto).Methods("POST")

	// Media, events, reports, planner
	api.HandleFunc("/upload/image", handler.UploadImage).Methods("POST")
	api.HandleFunc("/events", handler.ListEvents).Methods("GET")
	api.HandleFunc("/events/{id}", handler.GetEvent).Methods("GET")
	api.HandleFunc("/events/{id}/rsvp", handler.RSVP).Methods("POST")
	api.HandleFunc("/reports", handler.CreateReport).Methods("POST")
	api.HandleFunc("/ai-planner", handler.Plan).Methods("POST")
}
