package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	handler "github.com/joaoportolan93/Dream-Share-oficial/handler/http"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/cache"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/metrics"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
	"github.com/joaoportolan93/Dream-Share-oficial/platform/redis"
	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/comment"
	"github.com/joaoportolan93/Dream-Share-oficial/service/community"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/mute"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/reaction"
	"github.com/joaoportolan93/Dream-Share-oficial/service/save"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// Logging and telemetry identifiers.
const (
	component             = "gateway-http"
	namespaceCache        = "cache"
	namespaceService      = "service"
	subsystemHit          = "hit"
	serviceCommentCounts  = "comment_counts"
	serviceReactionCounts = "reaction_counts"
	storeCache            = "redis"
	storeService          = "postgres"
)

// Versions.
const (
	versionCurrent = "0.1"
)

// Timeouts.
const (
	defaultReadTimeout  = 2 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()

		listenAddr    = flag.String("listen.addr", ":8083", "HTTP bind address for main API")
		namespace     = flag.String("namespace", pg.MetaNamespace, "Namespace used to isolate environments")
		postgresURL   = flag.String("postgres.url", "", "Postgres URL to connect to")
		redisAddr     = flag.String("redis.addr", ":6379", "Redis address to connect to")
		telemetryAddr = flag.String("telemetry.addr", ":9000", "HTTP bind address where prometheus telemetry is exposed")
	)
	flag.Parse()

	// Setup logging.
	logger := log.With(
		log.NewJSONLogger(os.Stdout),
		"caller", log.Caller(3),
		"component", component,
		"revision", revision,
	)

	hostname, err := os.Hostname()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	logger = log.With(logger, "host", hostname)

	// Setup instrumentation.
	go func(addr string) {
		logger.Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", addr,
			"sub", "telemetry",
		)

		http.Handle("/metrics", promhttp.Handler())

		err := http.ListenAndServe(addr, nil)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", "telemetry")
			os.Exit(1)
		}
	}(*telemetryAddr)

	cacheFieldKeys := []string{
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldService,
		metrics.FieldStore,
	}

	cacheErrCount, cacheOpCount, cacheOpLatency := metrics.KeyMetrics(
		namespaceCache,
		cacheFieldKeys...,
	)

	cacheHitCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespaceCache,
		Subsystem: subsystemHit,
		Name:      "count",
		Help:      "Number of cache hits",
	}, cacheFieldKeys)

	serviceErrCount, serviceOpCount, serviceOpLatency := metrics.KeyMetrics(
		namespaceService,
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldService,
		metrics.FieldStore,
	)

	// Setup clients.
	redisPool := redis.Pool(*redisAddr, "")

	pgClient, err := sqlx.Connect(storeService, *postgresURL)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	// Setup caches.
	var commentCountsCache cache.CountService
	commentCountsCache = cache.RedisCountService(redisPool)
	commentCountsCache = cache.InstrumentCountServiceMiddleware(
		component,
		serviceCommentCounts,
		storeCache,
		cacheErrCount,
		cacheHitCount,
		cacheOpCount,
		cacheOpLatency,
	)(commentCountsCache)

	var reactionCountsCache cache.CountService
	reactionCountsCache = cache.RedisCountService(redisPool)
	reactionCountsCache = cache.InstrumentCountServiceMiddleware(
		component,
		serviceReactionCounts,
		storeCache,
		cacheErrCount,
		cacheHitCount,
		cacheOpCount,
		cacheOpLatency,
	)(reactionCountsCache)

	// Setup services.
	blocks := block.PostgresService(pgClient)

	var comments comment.Service
	comments = comment.PostgresService(pgClient)
	comments = comment.LogServiceMiddleware(logger, storeService)(comments)
	comments = comment.CacheServiceMiddleware(commentCountsCache)(comments)

	communities := community.PostgresService(pgClient)

	var follows follow.Service
	follows = follow.PostgresService(pgClient)
	follows = follow.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(follows)
	follows = follow.LogServiceMiddleware(logger, storeService)(follows)

	mutes := mute.PostgresService(pgClient)

	var notifications notification.Service
	notifications = notification.PostgresService(pgClient)
	notifications = notification.LogServiceMiddleware(logger, storeService)(notifications)

	var posts post.Service
	posts = post.PostgresService(pgClient)
	posts = post.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(posts)
	posts = post.LogServiceMiddleware(logger, storeService)(posts)

	var reactions reaction.Service
	reactions = reaction.PostgresService(pgClient)
	reactions = reaction.LogServiceMiddleware(logger, storeService)(reactions)
	reactions = reaction.CacheServiceMiddleware(reactionCountsCache)(reactions)

	saves := save.PostgresService(pgClient)

	var users user.Service
	users = user.PostgresService(pgClient)
	users = user.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(users)
	users = user.LogServiceMiddleware(logger, storeService)(users)

	// Setup core operations.
	var (
		notify      = core.Notify(notifications)
		postVisible = core.PostVisible(blocks, follows)
	)

	// Setup middlewares.
	var (
		withGateway = handler.Chain(
			handler.CtxPrepare(*namespace, versionCurrent),
			handler.Log(logger),
			handler.Instrument(component),
			handler.SecureHeaders(),
			handler.CORS(),
			handler.Gzip(),
			handler.HasUserAgent(),
			handler.ValidateContent(),
		)
		withUser = handler.Chain(
			withGateway,
			handler.CtxUser(users),
		)
	)

	// Setup Router.
	router := mux.NewRouter().StrictSlash(true)

	router.Methods("GET").Path(`/health-45016490610398192`).Name("healthcheck").HandlerFunc(
		handler.Wrap(
			handler.CtxPrepare(*namespace, versionCurrent),
			handler.Health(pgClient, redisPool),
		),
	)

	current := router.PathPrefix(fmt.Sprintf("/%s", versionCurrent)).Subrouter()

	// User routes.
	current.Methods("POST").Path(`/users`).Name("userCreate").HandlerFunc(
		handler.Wrap(
			withGateway,
			handler.UserCreate(
				core.UserCreate(users),
			),
		),
	)

	current.Methods("GET").Path(`/me`).Name("userRetrieveMe").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.UserRetrieveMe(
				core.UserRetrieve(blocks, follows, users),
			),
		),
	)

	current.Methods("GET").Path(`/users/search`).Name("userSearch").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.UserSearch(
				core.UserSearch(blocks, users),
			),
		),
	)

	current.Methods("GET").Path(`/users/{userID:[0-9]+}`).Name("userRetrieve").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.UserRetrieve(
				core.UserRetrieve(blocks, follows, users),
			),
		),
	)

	current.Methods("GET").Path(`/me/followers`).Name("followerList").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowerList(
				core.FollowerList(follows, users),
			),
		),
	)

	current.Methods("GET").Path(`/me/follows`).Name("followingList").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowingList(
				core.FollowingList(follows, users),
			),
		),
	)

	// Follow routes.
	current.Methods("POST").Path(`/users/{userID:[0-9]+}/follow`).Name("followRequest").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowRequest(
				core.FollowRequest(blocks, follows, users, notify),
			),
		),
	)

	current.Methods("DELETE").Path(`/users/{userID:[0-9]+}/follow`).Name("unfollow").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.Unfollow(
				core.Unfollow(follows),
			),
		),
	)

	current.Methods("DELETE").Path(`/users/{userID:[0-9]+}/follow/request`).Name("followCancel").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowCancel(
				core.FollowCancel(follows),
			),
		),
	)

	current.Methods("PUT").Path(`/me/follow-requests/{userID:[0-9]+}`).Name("followAccept").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowAccept(
				core.FollowAccept(follows, notify),
			),
		),
	)

	current.Methods("DELETE").Path(`/me/follow-requests/{userID:[0-9]+}`).Name("followReject").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowReject(
				core.FollowReject(follows),
			),
		),
	)

	// Block and mute routes.
	current.Methods("POST").Path(`/users/{userID:[0-9]+}/block`).Name("blockCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.BlockCreate(
				core.BlockCreate(blocks, follows),
			),
		),
	)

	current.Methods("DELETE").Path(`/users/{userID:[0-9]+}/block`).Name("blockDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.BlockDelete(
				core.BlockDelete(blocks),
			),
		),
	)

	current.Methods("POST").Path(`/users/{userID:[0-9]+}/mute`).Name("muteCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.MuteCreate(
				core.MuteCreate(mutes),
			),
		),
	)

	current.Methods("DELETE").Path(`/users/{userID:[0-9]+}/mute`).Name("muteDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.MuteDelete(
				core.MuteDelete(mutes),
			),
		),
	)

	// Post routes.
	current.Methods("POST").Path(`/posts`).Name("postCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.PostCreate(
				core.PostCreate(communities, follows, posts, notify),
			),
		),
	)

	current.Methods("DELETE").Path(`/posts/{postID:[0-9]+}`).Name("postDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.PostDelete(
				core.PostDelete(posts),
			),
		),
	)

	current.Methods("GET").Path(`/posts/{postID:[0-9]+}`).Name("postRetrieve").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.PostRetrieve(
				core.PostRetrieve(posts, users, postVisible),
			),
		),
	)

	current.Methods("PUT").Path(`/posts/{postID:[0-9]+}`).Name("postUpdate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.PostUpdate(
				core.PostUpdate(posts),
			),
		),
	)

	// Comment routes.
	current.Methods("POST").Path(`/posts/{postID:[0-9]+}/comments`).Name("commentCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentCreate(
				core.CommentCreate(comments, posts, users, postVisible, notify),
			),
		),
	)

	current.Methods("GET").Path(`/posts/{postID:[0-9]+}/comments`).Name("commentThread").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentThread(
				core.CommentThread(comments, posts, users, postVisible),
			),
		),
	)

	current.Methods("DELETE").Path(`/posts/{postID:[0-9]+}/comments/{commentID:[0-9]+}`).Name("commentDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentDelete(
				core.CommentDelete(comments),
			),
		),
	)

	current.Methods("PUT").Path(`/posts/{postID:[0-9]+}/comments/{commentID:[0-9]+}`).Name("commentUpdate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentUpdate(
				core.CommentUpdate(comments),
			),
		),
	)

	// Like routes.
	current.Methods("POST").Path(`/posts/{postID:[0-9]+}/likes`).Name("likeCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ReactionCreate(
				core.ReactionCreate(posts, reactions, users, postVisible, notify),
			),
		),
	)

	current.Methods("DELETE").Path(`/posts/{postID:[0-9]+}/likes`).Name("likeDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ReactionDelete(
				core.ReactionDelete(reactions),
			),
		),
	)

	// Save routes.
	current.Methods("POST").Path(`/posts/{postID:[0-9]+}/saves`).Name("saveCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.SaveCreate(
				core.SaveCreate(posts, saves, users, postVisible),
			),
		),
	)

	current.Methods("DELETE").Path(`/posts/{postID:[0-9]+}/saves`).Name("saveDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.SaveDelete(
				core.SaveDelete(saves),
			),
		),
	)

	// Feed routes.
	current.Methods("GET").Path(`/me/feed/following`).Name("feedFollowing").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedFollowing(
				core.FeedFollowing(blocks, comments, follows, posts, reactions, users),
			),
		),
	)

	current.Methods("GET").Path(`/me/feed/foryou`).Name("feedForYou").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedForYou(
				core.FeedForYou(blocks, comments, follows, mutes, posts, reactions, users),
			),
		),
	)

	current.Methods("GET").Path(`/me/posts`).Name("feedOwn").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedOwn(
				core.FeedOwn(comments, posts, reactions, users),
			),
		),
	)

	current.Methods("GET").Path(`/me/saves`).Name("feedSaved").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedSaved(
				core.FeedSaved(blocks, comments, follows, posts, reactions, saves, users),
			),
		),
	)

	current.Methods("GET").Path(`/users/{userID:[0-9]+}/posts`).Name("feedUser").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedUser(
				core.FeedUser(blocks, comments, follows, posts, reactions, users),
			),
		),
	)

	current.Methods("GET").Path(`/communities/{communityID:[0-9]+}/posts`).Name("feedCommunity").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedCommunity(
				core.FeedCommunity(blocks, comments, communities, follows, posts, reactions, users),
			),
		),
	)

	// Community routes.
	current.Methods("POST").Path(`/communities/{communityID:[0-9]+}/members`).Name("communityJoin").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommunityJoin(
				core.CommunityJoin(communities),
			),
		),
	)

	current.Methods("DELETE").Path(`/communities/{communityID:[0-9]+}/members`).Name("communityLeave").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommunityLeave(
				core.CommunityLeave(communities),
			),
		),
	)

	current.Methods("POST").Path(`/communities/{communityID:[0-9]+}/bans/{userID:[0-9]+}`).Name("communityBanCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommunityBanCreate(
				core.CommunityBanCreate(communities),
			),
		),
	)

	// Notification routes.
	current.Methods("GET").Path(`/me/notifications`).Name("notificationList").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.NotificationList(
				core.NotificationList(notifications, users),
			),
		),
	)

	current.Methods("PUT").Path(`/me/notifications/preferences`).Name("preferenceUpdate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.PreferenceUpdate(
				core.PreferenceUpdate(notifications),
			),
		),
	)

	current.Methods("GET").Path(`/me/notifications/preferences`).Name("preferenceRetrieve").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.PreferenceRetrieve(
				core.PreferenceGet(notifications),
			),
		),
	)

	current.Methods("PUT").Path(`/me/notifications/{notificationID:[0-9]+}/read`).Name("notificationRead").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.NotificationRead(
				core.NotificationRead(notifications),
			),
		),
	)

	// Setup server.
	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	logger.Log(
		"duration", time.Since(begin).Nanoseconds(),
		"lifecycle", "start",
		"listen", *listenAddr,
		"sub", "api",
	)

	err = server.ListenAndServe()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort", "sub", "api")
		os.Exit(1)
	}
}
