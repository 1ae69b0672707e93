package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"belajarbahasa/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T) (*UserService, *AnswerService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	answers := NewAnswerService(db, nil)
	return NewUserService(db, answers, nil), answers, db
}

func mustCreateUser(t *testing.T, svc *UserService, username, password string) *UserSummary {
	t.Helper()
	user, err := svc.Create(context.Background(), &CreateUserRequest{Username: username, Password: password})
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", username, err)
	}
	return user
}

func mustCreateAnswers(t *testing.T, svc *AnswerService, reqs ...CreateAnswerRequest) {
	t.Helper()
	if _, err := svc.CreateMany(context.Background(), reqs); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}
}

func TestUserServiceCreate(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	user := mustCreateUser(t, svc, "ana", "rahasia")
	if user.ID == "" || user.Username != "ana" || user.CreatedAt.IsZero() {
		t.Fatalf("unexpected summary: %+v", user)
	}

	var stored models.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Password == nil || *stored.Password == "rahasia" {
		t.Fatalf("password was not hashed: %v", stored.Password)
	}

	if _, err := svc.Create(ctx, &CreateUserRequest{Username: "ana"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate Create error = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, &CreateUserRequest{Username: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank Create error = %v, want ErrValidation", err)
	}
}

func TestUserServiceCreateWithoutPassword(t *testing.T) {
	svc, _, db := newTestUserService(t)

	user := mustCreateUser(t, svc, "budi", "")

	var stored models.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Password != nil {
		t.Fatalf("password = %v, want unset", *stored.Password)
	}

	_, err := svc.Login(context.Background(), &LoginRequest{Username: "budi", Password: "anything"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Login error = %v, want ErrUnauthorized", err)
	}
}

func TestUserServiceLogin(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	created := mustCreateUser(t, svc, "ana", "rahasia")

	got, err := svc.Login(ctx, &LoginRequest{Username: "ana", Password: "rahasia"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("Login id = %s, want %s", got.ID, created.ID)
	}

	_, err = svc.Login(ctx, &LoginRequest{Username: "ana", Password: "salah"})
	if !errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong password error = %v, want ErrUnauthorized only", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user error = %v, want ErrNotFound", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Username: "ana"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing password error = %v, want ErrValidation", err)
	}
}

func TestUserServiceGet(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	created := mustCreateUser(t, svc, "ana", "")

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != "ana" || got.TotalTrue != 0 || got.TotalFalse != 0 || got.LastActivity != nil {
		t.Fatalf("unexpected detail: %+v", got)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserServiceUpdateIsPartial(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	created := mustCreateUser(t, svc, "ana", "")

	activity := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	if _, err := svc.Update(ctx, created.ID, &UpdateUserRequest{
		TotalTrue:    intPtr(7),
		TotalFalse:   intPtr(2),
		LastActivity: &activity,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, &UpdateUserRequest{TotalFalse: intPtr(3)})
	if err != nil {
		t.Fatalf("partial Update failed: %v", err)
	}
	if updated.TotalTrue != 7 || updated.TotalFalse != 3 {
		t.Fatalf("partial Update = %d/%d, want 7/3", updated.TotalTrue, updated.TotalFalse)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TotalTrue != 7 || got.TotalFalse != 3 {
		t.Fatalf("stored counters = %d/%d, want 7/3", got.TotalTrue, got.TotalFalse)
	}
	if got.LastActivity == nil || !got.LastActivity.Equal(activity) {
		t.Fatalf("lastActivity = %v, want %v", got.LastActivity, activity)
	}

	if _, err := svc.Update(ctx, "missing", &UpdateUserRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserServiceListAllOnlyUsersWithAnswers(t *testing.T) {
	svc, answers, _ := newTestUserService(t)
	ctx := context.Background()

	ana := mustCreateUser(t, svc, "ana", "")
	mustCreateUser(t, svc, "budi", "")
	mustCreateAnswers(t, answers, answerReq(ana.ID, 1, models.LanguageEnglish, models.TypeVocab, "T1", 1, true))

	users, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != ana.ID {
		t.Fatalf("ListAll = %+v, want only ana", users)
	}
}

func TestUserServiceListByLanguage(t *testing.T) {
	svc, answers, _ := newTestUserService(t)
	ctx := context.Background()

	ana := mustCreateUser(t, svc, "ana", "")
	budi := mustCreateUser(t, svc, "budi", "")
	mustCreateAnswers(t, answers,
		answerReq(ana.ID, 1, models.LanguageEnglish, models.TypeVocab, "T1", 1, true),
		answerReq(ana.ID, 1, models.LanguageEnglish, models.TypeVocab, "T1", 2, true),
		answerReq(ana.ID, 1, models.LanguageEnglish, models.TypeVocab, "T1", 3, false),
		answerReq(ana.ID, 2, models.LanguageSpanish, models.TypeVocab, "T1", 1, false),
		answerReq(budi.ID, 1, models.LanguageSpanish, models.TypeVocab, "T1", 1, true),
	)
	if _, err := svc.Update(ctx, ana.ID, &UpdateUserRequest{TotalTrue: intPtr(100), TotalFalse: intPtr(50)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	english, err := svc.ListByLanguage(ctx, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("ListByLanguage failed: %v", err)
	}
	if len(english) != 1 || english[0].ID != ana.ID {
		t.Fatalf("ListByLanguage(english) = %+v, want only ana", english)
	}
	if english[0].TotalTrue != 2 || english[0].TotalFalse != 1 {
		t.Fatalf("english stats = %d/%d, want 2/1", english[0].TotalTrue, english[0].TotalFalse)
	}

	stored, err := svc.Get(ctx, ana.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.TotalTrue != 100 || stored.TotalFalse != 50 {
		t.Fatalf("stored counters changed to %d/%d", stored.TotalTrue, stored.TotalFalse)
	}

	spanish, err := svc.ListByLanguage(ctx, models.LanguageSpanish)
	if err != nil {
		t.Fatalf("ListByLanguage(spanish) failed: %v", err)
	}
	if len(spanish) != 2 {
		t.Fatalf("ListByLanguage(spanish) returned %d users, want 2", len(spanish))
	}

	if _, err := svc.ListByLanguage(ctx, "dothraki"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ListByLanguage(invalid) error = %v, want ErrValidation", err)
	}
}

func TestUserServiceGetAnswersForUser(t *testing.T) {
	svc, answers, _ := newTestUserService(t)
	ctx := context.Background()

	ana := mustCreateUser(t, svc, "ana", "")
	mustCreateAnswers(t, answers,
		answerReq(ana.ID, 1, models.LanguageSpanish, models.TypeVocab, "T1", 1, true),
		answerReq(ana.ID, 1, models.LanguageEnglish, models.TypeGrammar, "T1", 1, true),
		answerReq(ana.ID, 1, models.LanguageEnglish, models.TypeVocab, "T1", 1, false),
	)

	all, err := svc.GetAnswersForUser(ctx, ana.ID, "")
	if err != nil {
		t.Fatalf("GetAnswersForUser failed: %v", err)
	}
	if all.UserID != ana.ID || all.Username != "ana" || all.TotalAnswers != 3 {
		t.Fatalf("unexpected result: %+v", all)
	}
	if all.Answers[2].Language != models.LanguageSpanish {
		t.Fatalf("history order wrong, last answer is %s", all.Answers[2].Language)
	}

	english, err := svc.GetAnswersForUser(ctx, ana.ID, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("GetAnswersForUser(english) failed: %v", err)
	}
	if english.TotalAnswers != 2 || english.Answers[0].QuestionType != models.TypeVocab {
		t.Fatalf("unexpected english answers: %+v", english.Answers)
	}

	budi := mustCreateUser(t, svc, "budi", "")
	none, err := svc.GetAnswersForUser(ctx, budi.ID, "")
	if err != nil {
		t.Fatalf("GetAnswersForUser(no answers) failed: %v", err)
	}
	if none.TotalAnswers != 0 || none.Answers == nil {
		t.Fatalf("expected empty non-nil answers, got %+v", none)
	}

	if _, err := svc.GetAnswersForUser(ctx, "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetAnswersForUser(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserServiceFallsBackWhenCacheUnavailable(t *testing.T) {
	db := newTestDB(t)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewUserService(db, NewAnswerService(db, nil), NewUserCache(client, time.Minute))
	ctx := context.Background()
	created := mustCreateUser(t, svc, "ana", "")

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != "ana" {
		t.Fatalf("Get username = %q", got.Username)
	}
	if _, err := svc.Update(ctx, created.ID, &UpdateUserRequest{TotalTrue: intPtr(1)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestNewUserCacheNilClient(t *testing.T) {
	cache := NewUserCache(nil, time.Minute)
	if cache != nil {
		t.Fatalf("NewUserCache(nil) = %v, want nil", cache)
	}
	got, err := cache.Get(context.Background(), "any")
	if got != nil || err != nil {
		t.Fatalf("nil cache Get = (%v, %v), want (nil, nil)", got, err)
	}
	if err := cache.Set(context.Background(), &UserDetail{ID: "any"}, 0); err != nil {
		t.Fatalf("nil cache Set error = %v", err)
	}
}

func newTestUserCache(t *testing.T, ttl time.Duration) (*UserCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewUserCache(client, ttl), mr
}

func TestUserServiceReadsThroughCache(t *testing.T) {
	db := newTestDB(t)
	cache, mr := newTestUserCache(t, time.Minute)
	svc := NewUserService(db, NewAnswerService(db, nil), cache)
	ctx := context.Background()

	created := mustCreateUser(t, svc, "ana", "")
	key := "user:detail:" + created.ID

	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("Get did not cache %s", key)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("cached TTL = %s, want 1m", ttl)
	}

	// A change that bypasses the service is not visible while cached.
	if err := db.Model(&models.User{}).Where("id = ?", created.ID).Update("total_true", 42).Error; err != nil {
		t.Fatalf("direct update: %v", err)
	}
	cached, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cached.TotalTrue != 0 {
		t.Fatalf("Get TotalTrue = %d, want cached 0", cached.TotalTrue)
	}

	if _, err := svc.Update(ctx, created.ID, &UpdateUserRequest{TotalFalse: intPtr(3)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("Update left %s cached", key)
	}

	fresh, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fresh.TotalTrue != 42 || fresh.TotalFalse != 3 {
		t.Fatalf("Get after Update = %d/%d, want 42/3", fresh.TotalTrue, fresh.TotalFalse)
	}
	if !mr.Exists(key) {
		t.Fatalf("Get after Update did not cache %s", key)
	}
}

func TestUserCacheDropsFillAfterInvalidate(t *testing.T) {
	cache, mr := newTestUserCache(t, time.Minute)
	ctx := context.Background()
	detail := &UserDetail{ID: "u1", Username: "ana"}
	key := "user:detail:u1"

	version, err := cache.Version(ctx, "u1")
	if err != nil || version != 0 {
		t.Fatalf("Version = (%d, %v), want (0, nil)", version, err)
	}

	// An update lands between the row read and the cache fill.
	if err := cache.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if err := cache.Set(ctx, detail, version); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("Set cached a detail read before Invalidate")
	}
	if ttl := mr.TTL("user:detail:version:u1"); ttl != time.Minute {
		t.Fatalf("version TTL = %s, want 1m", ttl)
	}

	version, err = cache.Version(ctx, "u1")
	if err != nil || version != 1 {
		t.Fatalf("Version = (%d, %v), want (1, nil)", version, err)
	}
	if err := cache.Set(ctx, detail, version); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, "u1")
	if err != nil || got == nil || got.Username != "ana" {
		t.Fatalf("Get = (%+v, %v), want cached ana", got, err)
	}
}
