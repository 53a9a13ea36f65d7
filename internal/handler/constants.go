// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the home feed.
	RouteRoot = "/"

	// RouteParamPostID is the post ID parameter name.
	RouteParamPostID = "postID"
	// RouteParamCommentID is the comment ID parameter name.
	RouteParamCommentID = "commentID"

	// RoutePosts is the posts route prefix.
	RoutePosts = "/posts"
	// RoutePostCreate creates a post.
	RoutePostCreate = "/create/"
	// RoutePostID is a single post.
	RoutePostID = "/{postID}/"
	// RoutePostEdit edits a post.
	RoutePostEdit = "/{postID}/edit/"
	// RoutePostDelete deletes a post.
	RoutePostDelete = "/{postID}/delete/"
	// RouteCommentCreate adds a comment to a post.
	RouteCommentCreate = "/{postID}/comment/"
	// RouteCommentEdit edits a comment.
	RouteCommentEdit = "/{postID}/comment/{commentID}/edit/"
	// RouteCommentDelete deletes a comment.
	RouteCommentDelete = "/{postID}/comment/{commentID}/delete/"

	// RouteCategorySlug is the category feed route pattern.
	RouteCategorySlug = "/category/{slug}/"
	// RouteProfile is the profile feed route pattern.
	RouteProfile = "/profile/{username}/"
	// RouteProfileEdit edits the current user's profile.
	RouteProfileEdit = "/profile/edit/"

	// RoutePageAbout is the about page.
	RoutePageAbout = "/pages/about/"
	// RoutePageRules is the rules page.
	RoutePageRules = "/pages/rules/"

	// RouteAuth is the auth route prefix.
	RouteAuth = "/auth"
	// RouteLogin is the login route.
	RouteLogin = "/login/"
	// RouteLogout is the logout route.
	RouteLogout = "/logout/"
	// RouteRegistration is the sign-up route.
	RouteRegistration = "/registration/"

	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness check route.
	RouteHealthLive = "/health/live"
	// RouteHealthReady is the readiness check route.
	RouteHealthReady = "/health/ready"

	RouteRobots  = "/robots.txt"
	RouteSitemap = "/sitemap.xml"

	// RouteStatic serves the embedded stylesheet.
	RouteStatic = "/static/*"
	// RouteMedia serves uploaded images.
	RouteMedia = "/media/*"
)

const (
	redirectHome  = RouteRoot
	redirectLogin = RouteAuth + RouteLogin
)

// Flash types understood by the base layout.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
	flashTypeInfo    = "info"
)
