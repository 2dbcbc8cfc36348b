package server

// frameworkJS is the bootstrap module every harness loads. It imports the
// test file named by ?file=, records uncaught errors and signals completion.
// A test module may export a default async function; it is awaited.
const frameworkJS = `const failures = [];
window.__wtpFailures = failures;

const record = (err) => failures.push(String((err && err.stack) || err));
window.addEventListener("error", (e) => record(e.error || e.message));
window.addEventListener("unhandledrejection", (e) => record(e.reason));

const file = new URL(import.meta.url).searchParams.get("file");
try {
    const mod = await import("/" + file);
    if (typeof mod.default === "function") {
        await mod.default();
    }
} catch (err) {
    record(err);
} finally {
    window.__wtpDone = true;
}
`
