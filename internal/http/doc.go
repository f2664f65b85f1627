// Package http exposes the booking API over JSON.
//
// Routes (all under /api except the operational ones):
//   - POST /auth/register, POST /auth/login: public.
//   - GET /auth/me: current account.
//   - GET /bookings, GET /bookings/user, POST /bookings, PUT /bookings/{id},
//     PUT /bookings/{id}/status, DELETE /bookings/{id}.
//   - GET /users, PUT /users/{id}, PATCH /users/{id}/role, DELETE /users/{id}:
//     administrators only.
//   - GET /rooms/available, GET /rooms/check-availability?date=&time_slot=.
//   - GET /healthz and GET /metrics at the root.
//
// Every route except register, login, and the operational endpoints requires
// an "Authorization: Bearer <token>" header. Error bodies are
// {"message", "error"?, "code"?}; request and response DTOs live next to the
// handler that uses them.
package http
