// cmd/sacavia/commands.go

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/auth"
	"github.com/sacavia/sacavia-go/internal/categories"
	"github.com/sacavia/sacavia-go/internal/events"
	"github.com/sacavia/sacavia-go/internal/optimistic"
	"github.com/sacavia/sacavia-go/internal/planner"
	"github.com/sacavia/sacavia-go/internal/posts"
	"github.com/sacavia/sacavia-go/internal/reports"
)

type command struct {
	help string
	run  func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":         {"sign in and store the session", runLogin},
	"logout":        {"sign out and clear the session", runLogout},
	"signup":        {"create an account", runSignup},
	"profile":       {"show a profile (yours by default)", runProfile},
	"follow":        {"follow a user", runFollow},
	"unfollow":      {"unfollow a user", runUnfollow},
	"block":         {"block a user", runBlock},
	"post":          {"create a post with optional media", runPost},
	"like":          {"like or unlike a post", runLike},
	"save-location": {"save or unsave a location", runSaveLocation},
	"upload":        {"upload an image from a path or s3:// reference", runUpload},
	"categories":    {"list location categories", runCategories},
	"events":        {"list events", runEvents},
	"rsvp":          {"RSVP to an event", runRSVP},
	"report":        {"report content", runReport},
	"plan":          {"ask the planner for an itinerary", runPlan},
}

var errMissingArg = errors.New("missing argument")

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// oneArg parses fs and returns its single positional argument.
func oneArg(fs *flag.FlagSet, args []string, name string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s", errMissingArg, name)
	}
	return fs.Arg(0), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("SACAVIA_PASSWORD"), "account password")
	remember := fs.Bool("remember", true, "keep the session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.auth.Login(ctx, &auth.LoginRequest{Email: *email, Password: *password, RememberMe: *remember})
	if err != nil {
		return err
	}
	if a.cfg.SessionStore == "memory" {
		a.log.Warn("session store is memory, export SACAVIA_TOKEN to reuse this session")
		fmt.Println(res.Token)
	}
	return printJSON(res.User)
}

func runLogout(ctx context.Context, a *app, args []string) error {
	return a.auth.Logout(ctx)
}

func runSignup(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	req := &auth.SignupRequest{AcceptTerms: true}
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Username, "username", "", "username")
	fs.StringVar(&req.Password, "password", "", "password")
	interests := fs.String("interests", "", "comma separated interests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.ConfirmPassword = req.Password
	req.Interests = splitList(*interests)

	check, err := a.auth.CheckUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if !check.Available {
		return fmt.Errorf("username %q is taken, try one of: %s", req.Username, strings.Join(check.Suggestions, ", "))
	}

	res, err := a.auth.Signup(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(res.User)
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	userID := fs.String("user", "", "user id, defaults to you")
	withStats := fs.Bool("stats", false, "fetch the full stats")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.profile.GetProfile(ctx, *userID)
	if err != nil {
		return err
	}
	if *withStats {
		stats, err := a.profile.GetStats(ctx, p.User.ID)
		if err != nil {
			return err
		}
		p.Stats = stats
	}
	return printJSON(p)
}

func runFollow(ctx context.Context, a *app, args []string) error {
	target, err := oneArg(flag.NewFlagSet("follow", flag.ContinueOnError), args, "user id")
	if err != nil {
		return err
	}
	following, err := a.profile.Follow(ctx, target)
	if err != nil {
		return err
	}
	return printJSON(map[string]bool{"following": following})
}

func runUnfollow(ctx context.Context, a *app, args []string) error {
	target, err := oneArg(flag.NewFlagSet("unfollow", flag.ContinueOnError), args, "user id")
	if err != nil {
		return err
	}
	changed, err := a.profile.Unfollow(ctx, target)
	if err != nil {
		return err
	}
	return printJSON(map[string]bool{"unfollowed": changed})
}

func runBlock(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("block", flag.ContinueOnError)
	reason := fs.String("reason", "", "why you are blocking")
	target, err := oneArg(fs, args, "user id")
	if err != nil {
		return err
	}
	return a.profile.BlockUser(ctx, target, *reason)
}

func runPost(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	content := fs.String("content", "", "post text")
	images := fs.String("images", "", "comma separated image paths or s3:// references")
	videos := fs.String("videos", "", "comma separated video paths or s3:// references")
	locationID := fs.String("location", "", "location id to tag")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := &posts.CreatePostRequest{Content: *content, LocationID: *locationID}
	for _, ref := range splitList(*images) {
		f, err := a.source.Open(ctx, ref)
		if err != nil {
			return apiclient.WrapValidation(err)
		}
		req.Images = append(req.Images, f)
	}
	for _, ref := range splitList(*videos) {
		f, err := a.source.Open(ctx, ref)
		if err != nil {
			return apiclient.WrapValidation(err)
		}
		req.Videos = append(req.Videos, f)
	}

	_, err := a.posts.CreatePost(ctx, req, func(p float64) {
		fmt.Fprintf(os.Stderr, "\ruploading %3.0f%%", p*100)
	})
	fmt.Fprintln(os.Stderr)
	return err
}

func runLike(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("like", flag.ContinueOnError)
	undo := fs.Bool("undo", false, "unlike instead")
	postID, err := oneArg(fs, args, "post id")
	if err != nil {
		return err
	}

	state := optimistic.NewFlagState()
	if current, err := a.posts.CheckInteractionState(ctx, []string{postID}); err == nil {
		if i, ok := current.Find(postID); ok {
			state.Set(postID, i.IsLiked, i.LikeCount)
		}
	}
	if err := a.posts.ToggleLike(ctx, state, postID, !*undo); err != nil {
		return err
	}
	liked, count := state.Get(postID)
	return printJSON(map[string]interface{}{"isLiked": liked, "likeCount": count})
}

func runSaveLocation(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("save-location", flag.ContinueOnError)
	undo := fs.Bool("undo", false, "unsave instead")
	id, err := oneArg(fs, args, "location id")
	if err != nil {
		return err
	}

	state := optimistic.NewFlagState()
	if current, err := a.locations.CheckInteractionState(ctx, []string{id}); err == nil {
		if i, ok := current.Find(id); ok {
			state.Set(id, i.IsSaved, i.SaveCount)
		}
	}
	if err := a.locations.ToggleSave(ctx, state, id, !*undo); err != nil {
		return err
	}
	saved, count := state.Get(id)
	return printJSON(map[string]interface{}{"isSaved": saved, "saveCount": count})
}

func runUpload(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	alt := fs.String("alt", "", "alt text")
	bearer := fs.Bool("bearer", false, "authenticate with a bearer header instead of the cookie")
	ref, err := oneArg(fs, args, "path or s3:// reference")
	if err != nil {
		return err
	}

	mode := apiclient.AuthCookie
	if *bearer {
		mode = apiclient.AuthBearer
	}
	up, err := a.media.UploadRef(ctx, ref, *alt, mode)
	if err != nil {
		return err
	}
	return printJSON(up)
}

func runCategories(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	tree := fs.Bool("tree", false, "nest children under their parents")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := a.categories.List(ctx)
	if err != nil {
		return err
	}
	if *tree {
		return printJSON(categories.Tree(list))
	}
	return printJSON(list)
}

func runEvents(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	f := events.Filter{}
	fs.StringVar(&f.Category, "category", "", "category filter")
	status := fs.String("status", "", "status filter")
	fs.IntVar(&f.Page, "page", 1, "page")
	fs.IntVar(&f.Limit, "limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.Status = events.Status(*status)

	page, err := a.events.ListEvents(ctx, f)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func runRSVP(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rsvp", flag.ContinueOnError)
	status := fs.String("status", string(events.RSVPGoing), "going, interested or not_going")
	id, err := oneArg(fs, args, "event id")
	if err != nil {
		return err
	}
	e, err := a.events.RSVP(ctx, id, events.RSVP(*status))
	if err != nil {
		return err
	}
	return printJSON(e)
}

func runReport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	req := &reports.ReportRequest{}
	contentType := fs.String("type", "", "post, comment, user, location, review or photo")
	fs.StringVar(&req.ContentID, "id", "", "content id")
	fs.StringVar(&req.Reason, "reason", "", "spam, harassment, inappropriate, misinformation, violence, copyright or other")
	fs.StringVar(&req.Description, "description", "", "details, required for other")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.ContentType = reports.ContentType(*contentType)

	r, err := a.reports.Report(ctx, req)
	if errors.Is(err, apiclient.ErrConflict) {
		fmt.Fprintln(os.Stderr, "already reported")
		return nil
	}
	if err != nil {
		return err
	}
	return printJSON(r)
}

func runPlan(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	req := &planner.PlanRequest{}
	fs.StringVar(&req.Input, "input", "", "what you want to do")
	fs.StringVar(&req.Context, "context", "", "occasion, e.g. date night")
	fs.BoolVar(&req.UseNearby, "nearby", true, "use real nearby locations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := a.planner.Plan(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(plan)
}
