package layouts

// DatastarScript is the client bundle the server-sent patches are written for.
// base.templ loads the same URL.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.5/bundles/datastar.js"
