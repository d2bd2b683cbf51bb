package tests

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/aykutjm/ogrencim/apps/api/echo"
	"github.com/aykutjm/ogrencim/core/user"
	emailsvc "github.com/aykutjm/ogrencim/services/email"
	"github.com/aykutjm/ogrencim/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Ayşe Yılmaz", "ayse@test.tr", user.RoleAdmin)
	testutil.CreateUser(t, app.usrRepo, "Pasif", "pasif@test.tr", "Pa$$w0rd!", user.RoleTeacher, false)

	login := func(email, pwd string) []byte {
		return marshalObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{name: "Unknown email", body: login("nobody@test.tr", "Pa$$w0rd!"), wantCode: http.StatusBadRequest},
		{name: "Wrong password", body: login("ayse@test.tr", "wrong"), wantCode: http.StatusBadRequest},
		{name: "Inactive user", body: login("pasif@test.tr", "Pa$$w0rd!"), wantCode: http.StatusForbidden},
		{name: "Email is case insensitive", body: login(" AYSE@test.tr ", "Pa$$w0rd!"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/users/login"

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt)
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp echoapi.LoginResponse
			unmarshal(t, rec, &resp)
			assert.Equal(t, user.RoleAdmin, resp.Role)

			claims := new(echoapi.Claims)
			_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(app.conf.SecretKey), nil
			})
			require.NoError(t, err)
			assert.Equal(t, "ayse@test.tr", claims.Email)
			assert.Equal(t, user.RoleAdmin, claims.Role)
		})
	}
}

func Test_userApi_loginRateLimit(t *testing.T) {
	app := setup(t)
	body := marshalObj(t, echoapi.LoginRequest{Email: "nobody@test.tr", Password: "Pa$$w0rd!"})

	for i := 0; i < app.conf.RateLimit.Requests; i++ {
		app.do(t, httpTest{method: http.MethodPost, path: "/api/users/login", body: body, wantCode: http.StatusBadRequest})
	}
	rec := app.do(t, httpTest{method: http.MethodPost, path: "/api/users/login", body: body, wantCode: http.StatusTooManyRequests})
	checkCodeAndData(t, httpTest{wantCode: http.StatusTooManyRequests, wantData: marshalObj(t, httpErr{Error: "too many requests"})}, rec)
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	parent := app.createUser(t, "Veli", "veli@test.tr", user.RoleParent)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "Current user", token: app.token(t, parent), wantCode: http.StatusOK, wantData: marshalObj(t, parent)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/users/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	inactive := testutil.CreateUser(t, app.usrRepo, "Pasif", "pasif@test.tr", "", user.RoleTeacher, false)
	teacher := app.createUser(t, "Öğretmen", "ogretmen@test.tr", user.RoleTeacher)

	old := time.Now().Add(-2 * app.conf.Server.JWTRefreshExpirationDelta).Unix()
	expiredToken, err := echoapi.GenerateToken(app.conf, echoapi.GetUserClaims(app.conf, teacher, old))
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: app.token(t, inactive), wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: expiredToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "refresh has expired"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Token refreshed", func(t *testing.T) {
		rec := app.do(t, httpTest{method: http.MethodPost, path: "/api/users/token-refresh", token: app.token(t, teacher), wantCode: http.StatusOK})
		var resp echoapi.TokenResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Admin", "admin@test.tr", user.RoleAdmin)
	teacher := app.createUser(t, "Öğretmen", "ogretmen@test.tr", user.RoleTeacher)
	adminToken := app.token(t, admin)

	newUser := func(email, role string) []byte {
		return marshalObj(t, user.NewUser{
			Name:            "Yeni Kullanıcı",
			Email:           email,
			Password:        "Gizli#2024x",
			PasswordConfirm: "Gizli#2024x",
			Role:            role,
		})
	}

	tests := []httpTest{
		{name: "Auth required", body: newUser("a@test.tr", user.RoleTeacher), wantCode: http.StatusUnauthorized},
		{name: "Admin required", token: app.token(t, teacher), body: newUser("a@test.tr", user.RoleTeacher), wantCode: http.StatusForbidden},
		{name: "Role above own", token: adminToken, body: newUser("a@test.tr", user.RoleSuperAdmin), wantCode: http.StatusBadRequest},
		{name: "Email taken", token: adminToken, body: newUser("ogretmen@test.tr", user.RoleTeacher), wantCode: http.StatusBadRequest},
		{name: "Created", token: adminToken, body: newUser("yeni@test.tr", user.RoleTeacher), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/users/register"

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt)
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				unmarshal(t, rec, &usr)
				assert.Equal(t, "yeni@test.tr", usr.Email)
				assert.Equal(t, user.RoleTeacher, usr.Role)
				assert.True(t, usr.IsActive)
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)
	superadmin := app.createUser(t, "Zeki Süper", "super@test.tr", user.RoleSuperAdmin)
	admin := app.createUser(t, "Ali Admin", "admin@test.tr", user.RoleAdmin)
	parent := app.createUser(t, "Mert Veli", "veli@test.tr", user.RoleParent)
	token := app.token(t, superadmin)

	path := func(search, ordering string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/api/users?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: path("", ""), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "Superadmin required", path: path("", ""), token: app.token(t, admin), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Order by name", path: path("", "name"), token: token, wantData: marshalObj(t, []user.User{admin, parent, superadmin})},
		{name: "Order by -name", path: path("", "-name"), token: token, wantData: marshalObj(t, []user.User{superadmin, parent, admin})},
		{name: "Search", path: path("VELI", ""), token: token, wantData: marshalObj(t, []user.User{parent})},
		{name: "Role", path: path("", "name", user.RoleAdmin, user.RoleParent), token: token, wantData: marshalObj(t, []user.User{admin, parent})},
		{name: "Nothing found", path: path("nobody", ""), token: token, wantData: []byte("[]")},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_setRoleAndDelete(t *testing.T) {
	app := setup(t)
	superadmin := app.createUser(t, "Süper", "super@test.tr", user.RoleSuperAdmin)
	teacher := app.createUser(t, "Öğretmen", "ogretmen@test.tr", user.RoleTeacher)
	token := app.token(t, superadmin)

	t.Run("Unknown role", func(t *testing.T) {
		app.do(t, httpTest{
			method: http.MethodPut, path: "/api/users/" + teacher.ID + "/role", token: token,
			body: marshalObj(t, user.UpdateRole{Role: "principal"}), wantCode: http.StatusBadRequest,
		})
	})

	t.Run("Role set", func(t *testing.T) {
		rec := app.do(t, httpTest{
			method: http.MethodPut, path: "/api/users/" + teacher.ID + "/role", token: token,
			body: marshalObj(t, user.UpdateRole{Role: user.RoleAdmin}), wantCode: http.StatusOK,
		})
		var usr user.User
		unmarshal(t, rec, &usr)
		assert.Equal(t, user.RoleAdmin, usr.Role)
	})

	t.Run("Cannot delete themselves", func(t *testing.T) {
		app.do(t, httpTest{method: http.MethodDelete, path: "/api/users/" + superadmin.ID, token: token, wantCode: http.StatusForbidden})
	})

	t.Run("Deleted", func(t *testing.T) {
		app.do(t, httpTest{method: http.MethodDelete, path: "/api/users/" + teacher.ID, token: token, wantCode: http.StatusNoContent})
		app.do(t, httpTest{method: http.MethodGet, path: "/api/users/" + teacher.ID, token: token, wantCode: http.StatusNotFound})
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Veli", "veli@test.tr", user.RoleParent)

	// unknown emails are not disclosed
	app.do(t, httpTest{
		method: http.MethodPost, path: "/api/users/password-reset",
		body: marshalObj(t, echoapi.PasswordResetRequest{Email: "nobody@test.tr"}), wantCode: http.StatusOK,
	})
	assert.Empty(t, emailsvc.SentMessages)

	app.do(t, httpTest{
		method: http.MethodPost, path: "/api/users/password-reset",
		body: marshalObj(t, echoapi.PasswordResetRequest{Email: usr.Email}), wantCode: http.StatusOK,
	})
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, usr.Email, msg.To[0].Address)
	data, ok := msg.TemplateData.(map[string]interface{})
	require.True(t, ok)

	reset := func(token string) []byte {
		return marshalObj(t, user.ResetUserPassword{
			UID:             data["uid"].(string),
			Token:           token,
			Password:        "Yeni#Parola42",
			PasswordConfirm: "Yeni#Parola42",
		})
	}

	app.do(t, httpTest{method: http.MethodPost, path: "/api/users/password-reset-confirm", body: reset("bad-token"), wantCode: http.StatusBadRequest})
	app.do(t, httpTest{
		method: http.MethodPost, path: "/api/users/password-reset-confirm",
		body: reset(data["token"].(string)), wantCode: http.StatusOK,
	})
	app.do(t, httpTest{
		method: http.MethodPost, path: "/api/users/login",
		body: marshalObj(t, echoapi.LoginRequest{Email: usr.Email, Password: "Yeni#Parola42"}), wantCode: http.StatusOK,
	})
}
