package web

const loginHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Coherence · Login</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: Verdana, Arial, sans-serif;
    background: #202020;
    color: #e0e0e0;
    min-height: 100vh;
    display: flex;
    align-items: center;
    justify-content: center;
  }
  .login-wrap { width: 100%; max-width: 360px; padding: 24px; }
  .login-title {
    font-size: 22px;
    font-weight: 700;
    color: #fff;
    text-align: center;
    margin-bottom: 24px;
  }
  .login-card {
    background: #404040;
    border: 1px solid #606060;
    border-radius: 6px;
    padding: 24px;
  }
  .login-error {
    background: #4a1c1c;
    border: 1px solid #c04040;
    color: #ff9090;
    border-radius: 4px;
    padding: 8px 12px;
    font-size: 12px;
    margin-bottom: 16px;
  }
  .login-field { margin-bottom: 14px; }
  .login-field label {
    display: block;
    font-size: 11px;
    text-transform: uppercase;
    color: #c0c0c0;
    margin-bottom: 4px;
  }
  .login-field input {
    width: 100%;
    background: #202020;
    border: 1px solid #606060;
    border-radius: 4px;
    color: #fff;
    padding: 8px 10px;
  }
  .login-btn {
    width: 100%;
    background: #C0C0C0;
    color: #000;
    border: none;
    border-radius: 4px;
    font-weight: 600;
    padding: 10px;
    cursor: pointer;
  }
  .login-btn:hover { background: #e0e0e0; }
</style>
</head>
<body>
<div class="login-wrap">
  <div class="login-title">Coherence</div>
  <div class="login-card">
    <!--ERROR-->
    <form method="POST" action="/login">
      <div class="login-field">
        <label for="username">Username</label>
        <input id="username" name="username" type="text" placeholder="admin" autocomplete="username" required autofocus>
      </div>
      <div class="login-field">
        <label for="password">Password</label>
        <input id="password" name="password" type="password" autocomplete="current-password" required>
      </div>
      <button class="login-btn" type="submit">Sign in</button>
    </form>
  </div>
</div>
</body>
</html>`
