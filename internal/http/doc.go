// Package httpapp provides the HTTP server for Scribe.
//
//	@title						Scribe API
//	@version					1.0
//	@description				Backend API for the Scribe blogging platform.
//	@description
//	@description				## Authentication
//	@description
//	@description				Signup or signin returns a JWT bound to your user id. Every
//	@description				post-mutation and profile-mutation route requires it:
//	@description
//	@description				```bash
//	@description				curl -X POST /user/signup -d '{"username":"ada","email":"ada@example.com","password":"secret1"}'
//	@description				# Returns: {"jwt": "TOKEN", "id": "...", "username": "ada"}
//	@description				curl -X POST /blog/post -H "Authorization: Bearer TOKEN" -d '{"title":"...","content":"..."}'
//	@description				```
//	@description
//	@description				## Account recovery
//	@description
//	@description				Fetch the security question by email, submit the answer; a correct
//	@description				answer returns a token usable against /user/resetPassword.
//
//	@contact.name				Scribe
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT from /user/signup, /user/signin, or /user/verifyAnswer
//
//	@tag.name					Blog
//	@tag.description			Browse, publish, edit, and delete blog posts. Reads are public; writes are ownership-scoped.
//
//	@tag.name					Votes
//	@tag.description			Upvote or downvote posts. Votes belong to the authenticated user.
//
//	@tag.name					Users
//	@tag.description			Signup, signin, profile management, and security-question recovery.
package httpapp
