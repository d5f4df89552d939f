package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	devenv "mariinsky-counter/dev/env"
	"mariinsky-counter/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body><form action="/Account/Login" method="post">
<input id="InputL" name="UserName"><input id="InputP" name="Password" type="password">
</form></body></html>`

const eventPage = `<html><body><table>
<tr>
	<td style="padding-left: 5px; border: 1px solid gray;">Одетта</td>
	<td style="padding-left: 5px; border: 1px solid gray;">Иванова</td>
	<td style="padding-left: 5px; border: 1px solid gray;">Петрова (ввод)</td>
</tr>
<tr><td>ignored</td></tr>
</table></body></html>`

func newPortal(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /Account/Login", func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("UserName") != "user" || r.PostForm.Get("Password") != "secret" {
			fmt.Fprint(w, loginPage)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		fmt.Fprint(w, "<html><body>welcome</body></html>")
	})
	mux.HandleFunc("POST /Home/MoreInfo/{id}", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "ok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("a") != "9" {
			fmt.Fprint(w, "<html><body><table></table></body></html>")
			return
		}
		fmt.Fprint(w, eventPage)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDepartment(t *testing.T) {
	testCases := []struct {
		department Department
		view       string
		menu       string
	}{
		{department: Ballet, view: "9", menu: "3"},
		{department: Extras, view: "11", menu: "6"},
	}
	for _, test := range testCases {
		view, err := test.department.EventView()
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, test.view, view)
		menu, err := test.department.MenuCode()
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, test.menu, menu)
	}

	_, err := Department("opera").EventView()
	require.Error(t, err)
	_, err = Department("opera").MenuCode()
	require.Error(t, err)
}

func TestNewClientRejectsRelativeUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "/relative"})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	server := newPortal(t)
	ctx := context.Background()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	err = client.LoginUsernamePassword(ctx, "user", "wrong")
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	err = client.LoginUsernamePassword(ctx, "user", "secret")
	require.NoError(t, err)
}

func TestEventCells(t *testing.T) {
	server := newPortal(t)
	ctx := context.Background()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.EventCells(ctx, Ballet, "1")
	require.Error(t, err, "requests without a session are rejected")

	err = client.LoginUsernamePassword(ctx, "user", "secret")
	if err != nil {
		t.Fatal(err)
	}

	cells, err := client.EventCells(ctx, Ballet, "1")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"Одетта", "Иванова", "Петрова (ввод)"}, cells)

	cells, err = client.EventCells(ctx, Extras, "1")
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, cells)

	_, err = client.EventCells(ctx, Ballet, "404")
	require.Error(t, err)
}

func getTestConfig(t testing.TB) devenv.PortalTestConfig {
	contents, err := devenv.GetStateFile("portal_config.json")
	if errors.Is(err, os.ErrNotExist) {
		t.Skip("dev/.state/portal_config.json is not present")
	}
	if err != nil {
		t.Fatal(err)
	}

	var cached devenv.PortalTestConfig
	err = json.Unmarshal(contents, &cached)
	if err != nil {
		t.Fatal(err)
	}
	return cached
}

func TestClient(t *testing.T) {
	config := getTestConfig(t)

	cleanup := telemetry.SetupForTesting(t, "test:mariinsky/core")
	defer cleanup()

	ctx, span := tracer.Start(context.Background(), "TestClient")
	defer span.End()

	client, err := NewClient(ClientOptions{BaseUrl: config.BaseUrl})
	if err != nil {
		t.Fatal(err)
	}
	err = client.LoginUsernamePassword(ctx, config.Username, config.Password)
	if err != nil {
		t.Fatal(err)
	}

	cells, err := client.EventCells(ctx, Department(config.Category), config.Event)
	if err != nil {
		t.Fatal(err)
	}
	require.Zero(t, len(cells)%3, "cells come in rows of three")
}
