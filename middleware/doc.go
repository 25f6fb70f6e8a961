// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/progress", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). The request id is taken from X-Request-ID or generated,
and echoed back in the response.

# CORS Middleware

Enable cross-origin requests for the static site and native apps:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type,
Accept-Language, X-Client-ID.

# Language

WithLanguage picks en or el per request: ?lang=, then the ei_lang cookie,
then Accept-Language. Handlers read the result with LangFromContext.

# Client Identity

WithClient gives every browser an HMAC-signed ei_client cookie holding a
random client id; native apps may send X-Client-ID instead. Handlers read
it with ClientIDFromContext. The id only backs the "you have already signed"
flag; it is not authentication.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.SignRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used in request logs.
*/
package middleware
