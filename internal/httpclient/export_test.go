package httpclient

var RedactToken = redactToken
